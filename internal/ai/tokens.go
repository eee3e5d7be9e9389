package ai

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const fallbackEncoding = "cl100k_base"

// TiktokenCounter — точный подсчёт токенов; кодировки кэшируются по модели.
// Если кодировку не достать (нет сети при первом запуске), считаем грубо.
type TiktokenCounter struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken
	log  *zap.Logger
}

func NewTiktokenCounter(log *zap.Logger) *TiktokenCounter {
	if log == nil {
		log = zap.NewNop()
	}
	return &TiktokenCounter{
		encs: make(map[string]*tiktoken.Tiktoken),
		log:  log,
	}
}

func (c *TiktokenCounter) Count(model, text string) int {
	enc := c.encoding(model)
	if enc == nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) encoding(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encs[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		c.log.Warn("token encoding unavailable, estimating", zap.String("model", model), zap.Error(err))
		enc = nil
	}

	// nil тоже кэшируем, чтобы не дёргать загрузку на каждом куске
	c.encs[model] = enc
	return enc
}

// EstimateTokens — ~4 символа на токен.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
