package tokenutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Greater(t, CountTokens("hello world"), 0)
}

func TestEstimateFast(t *testing.T) {
	assert.Equal(t, 0, EstimateFast("   \n\t  "))
	assert.Equal(t, 4, EstimateFast("a b c d"))
	assert.Equal(t, 25, EstimateFast(strings.Repeat("x", 100)))
}

func TestTruncateToTokens(t *testing.T) {
	text := strings.Repeat("proposal ", 2000)

	out, cut := TruncateToTokens(text, 0)
	assert.False(t, cut)
	assert.Equal(t, text, out)

	out, cut = TruncateToTokens("short", 100)
	assert.False(t, cut)
	assert.Equal(t, "short", out)

	out, cut = TruncateToTokens(text, 50)
	assert.True(t, cut)
	assert.True(t, strings.HasSuffix(out, TruncationMarker))
	assert.Less(t, len(out), len(text))
}
