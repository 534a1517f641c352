package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	text, ok := NormalizeText("  hello there  ")
	assert.True(t, ok)
	assert.Equal(t, "hello there", text)

	_, ok = NormalizeText("")
	assert.False(t, ok)

	_, ok = NormalizeText("   \n\t  ")
	assert.False(t, ok)

	_, ok = NormalizeText(strings.Repeat("a", maxTextLength+1))
	assert.False(t, ok)

	text, ok = NormalizeText(strings.Repeat("a", maxTextLength))
	assert.True(t, ok)
	assert.Len(t, text, maxTextLength)
}
