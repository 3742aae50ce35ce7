package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lovepop1/emotiaisupport/common/logger"
)

// TokenCounter measures prompt size for budget enforcement.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with the cl100k_base encoding. When the
// encoding cannot be loaded it degrades to a bytes/4 estimate rather
// than failing the turn.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			logger.Warnf("tiktoken encoding unavailable, using byte estimate: %v", err)
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
