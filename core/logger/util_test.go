package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsControlRunes(t *testing.T) {
	in := "BID\x00 12\x1b 5\tok\nline"
	out := Sanitize(in)
	assert.Equal(t, "BID 12 5\tok\nline", out)
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "", SanitizeLimit("anything", 0))
	assert.Equal(t, "abc", SanitizeLimit("abcdef", 3))
	assert.Equal(t, "abcdef", SanitizeLimit("abcdef", 16))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "error", Status(assert.AnError))
}
