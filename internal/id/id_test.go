package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("item")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "item-"))
	// prefix + "-" + 21-char nanoid
	assert.Len(t, got, len("item-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := Generate("asset")
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		got := MustGenerate("board")
		assert.True(t, strings.HasPrefix(got, "board-"))
	})
}
