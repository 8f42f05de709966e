// Package tokenutil counts and trims text in model tokens. It lazily loads
// the cl100k_base encoding on first use and falls back to a character
// heuristic when the encoding cannot be loaded (for example offline).
package tokenutil

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TruncationMarker is appended to text cut by TruncateToTokens.
const TruncationMarker = "\n[... truncated ...]"

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	return encoding
}

// CountTokens returns the cl100k_base token count, or EstimateFast when the
// encoding is unavailable.
func CountTokens(text string) int {
	if enc := loadEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns a heuristic token estimate: max(runes/4, word_count).
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// TruncateToTokens keeps roughly the first maxTokens tokens of text and
// reports whether anything was cut. A non-positive limit disables truncation.
func TruncateToTokens(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return text, false
	}
	if enc := loadEncoding(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text, false
		}
		return enc.Decode(tokens[:maxTokens]) + TruncationMarker, true
	}
	runes := []rune(text)
	limit := maxTokens * 4
	if limit >= len(runes) {
		return text, false
	}
	return string(runes[:limit]) + TruncationMarker, true
}
