package gather_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/codeclash/judge/internal/gather"
)

func TestTrimToRectSmallInputUnchanged(t *testing.T) {
	assert.Equal(t, "hello\nworld", gather.TrimToRect("hello\nworld", 40, 80))
	assert.Equal(t, "", gather.TrimToRect("", 40, 80))
}

func TestTrimToRectCapsHeight(t *testing.T) {
	in := strings.TrimSuffix(strings.Repeat("line\n", 50), "\n")
	out := gather.TrimToRect(in, 40, 80)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 41)
	assert.Equal(t, "[...]", lines[40])
}

func TestTrimToRectCapsWidth(t *testing.T) {
	in := strings.Repeat("x", 100)
	out := gather.TrimToRect(in, 40, 80)
	assert.Equal(t, strings.Repeat("x", 80)+"[...]", out)
}

func TestTrimToRectCutsOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("ā", 100)
	out := gather.TrimToRect(in, 40, 80)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("ā", 80)+"[...]", out)

	// wide in bytes but within the rune cap stays whole
	in = strings.Repeat("ū", 60)
	assert.Equal(t, in, gather.TrimToRect(in, 40, 80))
}

func TestTrimToRectExactFit(t *testing.T) {
	in := strings.Repeat("y", 80)
	assert.Equal(t, in, gather.TrimToRect(in, 40, 80))
}
