package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "...", Truncate("abcdef", 2))
	assert.Equal(t, "தமிழ்...", Truncate("தமிழ்நாடு பாடல்", 8))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", Pad("ab", 5))
	assert.Equal(t, "ab...", Pad("abcdefgh", 5))
}

func TestRenderPercentBarClamps(t *testing.T) {
	full := RenderPercentBar(250, 4)
	empty := RenderPercentBar(-5, 4)
	assert.Equal(t, 4, strings.Count(full, "█"))
	assert.Equal(t, 4, strings.Count(empty, "░"))
}
