package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	assert.Equal(t, "100", Number(100))
	assert.Equal(t, "100.5", Number(100.5))
	assert.Equal(t, "0.25", Number(0.25))
	assert.Equal(t, "0", Number(0))
}

func TestOptionalNumber(t *testing.T) {
	assert.Equal(t, "N/A", OptionalNumber(nil, "N/A"))

	v := 42.0
	assert.Equal(t, "42", OptionalNumber(&v, "N/A"))
}

func TestDerefString(t *testing.T) {
	assert.Equal(t, "fallback", DerefString(nil, "fallback"))

	s := "value"
	assert.Equal(t, "value", DerefString(&s, "fallback"))
}
