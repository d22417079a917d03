// Package tokens counts model tokens for usage accounting.
package tokens

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// DefaultEncoding is used when the model has no known encoding.
const DefaultEncoding = "cl100k_base"

var (
	_ driven.TokenCounter = (*TiktokenCounter)(nil)
	_ driven.TokenCounter = CharCounter{}
)

// TiktokenCounter counts BPE tokens with tiktoken-go.
type TiktokenCounter struct {
	mu       sync.RWMutex
	encoding string
	tke      *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding for model, falling back to
// DefaultEncoding for models tiktoken does not know.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	tke, err := tiktoken.EncodingForModel(model)
	encoding := model
	if err != nil {
		tke, err = tiktoken.GetEncoding(DefaultEncoding)
		encoding = DefaultEncoding
	}
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", DefaultEncoding, err)
	}
	return &TiktokenCounter{encoding: encoding, tke: tke}, nil
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tke.Encode(text, nil, nil))
}

// Encoding names the model or encoding the counter was built for.
func (c *TiktokenCounter) Encoding() string {
	return c.encoding
}

// CharCounter counts characters. It is used when no BPE encoding can be
// loaded, e.g. offline without a cached vocabulary.
type CharCounter struct{}

// Count returns the number of runes in text.
func (CharCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// NewCounter returns a tiktoken counter for model or, when the encoding
// cannot be loaded, a CharCounter.
func NewCounter(model string) driven.TokenCounter {
	c, err := NewTiktokenCounter(model)
	if err != nil {
		logger.Debug("token counter: %v, counting characters instead", err)
		return CharCounter{}
	}
	return c
}
