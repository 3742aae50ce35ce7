// Command emotiai-server runs the wellness chat pipeline as an MCP
// server over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	emotiai "github.com/lovepop1/emotiaisupport"
	"github.com/lovepop1/emotiaisupport/common/logger"
	"github.com/lovepop1/emotiaisupport/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML config file")
		seedPath   = flag.String("seed", "", "path to a corpus seed file (overrides config)")
		backfill   = flag.Bool("backfill", true, "backfill missing embeddings on startup")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if err := run(*configPath, *seedPath, *backfill, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "emotiai-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, seedPath string, backfill, debug bool) error {
	// Local development reads API keys from .env; absence is fine.
	_ = godotenv.Load()

	zapCfg := zap.NewProductionConfig()
	if debug {
		zapCfg = zap.NewDevelopmentConfig()
	}
	// MCP stdio owns stdout; logs go to stderr.
	zapCfg.OutputPaths = []string{"stderr"}
	zl, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zl.Sync()
	logger.SetLogger(zl)
	if debug {
		logger.SetLevel(logger.LevelDebug)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if seedPath != "" {
		cfg.Corpus.SeedPath = seedPath
	}

	srv, client, err := emotiai.NewServer("emotiai", cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Corpus.SeedPath != "" {
		n, err := client.LoadSeed(ctx, cfg.Corpus.SeedPath)
		if err != nil {
			return fmt.Errorf("load corpus seed: %w", err)
		}
		logger.Infof("loaded %d guides from %s", n, cfg.Corpus.SeedPath)
	}
	if backfill {
		report, err := client.IngestCorpus(ctx, false)
		if err != nil {
			return fmt.Errorf("startup backfill: %w", err)
		}
		logger.Infof("startup backfill: updated=%d failed=%d", report.Updated, report.Failed)
	}

	logger.Infof("emotiai-server %s serving on stdio", emotiai.Version)
	return server.ServeStdio(srv)
}
