// Package logger provides the leveled logging facade used across the
// service. Output goes through a zap SugaredLogger; the default sink is a
// no-op so library code and tests stay quiet unless a logger is installed.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// LogLevel represents log severity levels
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level atomic.Int32

	sink atomic.Pointer[zap.SugaredLogger]
)

func init() {
	level.Store(int32(LevelInfo))
	sink.Store(zap.NewNop().Sugar())
}

// SetLogger installs the zap logger used as the backend. Passing nil restores
// the no-op sink.
func SetLogger(l *zap.Logger) {
	if l == nil {
		sink.Store(zap.NewNop().Sugar())
		return
	}
	sink.Store(l.Sugar())
}

// SetLevel sets the minimum log level.
func SetLevel(l LogLevel) { level.Store(int32(l)) }

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	if LogLevel(level.Load()) > LevelDebug {
		return
	}
	sink.Load().Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	if LogLevel(level.Load()) > LevelInfo {
		return
	}
	sink.Load().Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	if LogLevel(level.Load()) > LevelWarn {
		return
	}
	sink.Load().Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	sink.Load().Errorf(format, args...)
}
