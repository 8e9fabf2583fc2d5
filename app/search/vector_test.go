package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentVector(t *testing.T) {
	cfg, err := LookupConfig(ConfigEnglish)
	require.NoError(t, err)

	v := DocumentVector(cfg, "Python Tutorial", "Learn python basics")
	assert.Equal(t, "'basic':5B 'learn':3B 'python':1A,4B 'tutori':2A", v.String())
	assert.Equal(t, 5, v.MaxPos())
	assert.True(t, v.Has("python", 4))
	assert.False(t, v.Has("python", 2))
}

func TestVectorLimits(t *testing.T) {
	cfg, err := LookupConfig(ConfigSimple)
	require.NoError(t, err)

	t.Run("positions per lexeme are capped", func(t *testing.T) {
		v := ToVector(cfg, strings.Repeat("go ", 300))
		assert.Len(t, v["go"], maxPositionsPerLex)
	})

	t.Run("positions are clamped", func(t *testing.T) {
		left := Vector{"a": {{Pos: maxPosition - 1}}}
		right := Vector{"b": {{Pos: 5}}}
		joined := left.Concat(right)
		assert.Equal(t, maxPosition, joined["b"][0].Pos)
	})

	t.Run("concat merges shared lexemes in order", func(t *testing.T) {
		left := ToVector(cfg, "x y").SetWeight(WeightA)
		right := ToVector(cfg, "y").SetWeight(WeightB)
		joined := left.Concat(right)
		assert.Equal(t, []Position{{Pos: 2, Weight: WeightA}, {Pos: 3, Weight: WeightB}}, joined["y"])
	})
}
