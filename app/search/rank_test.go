package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	cfg, err := LookupConfig(ConfigRussian)
	require.NoError(t, err)
	tutorial := DocumentVector(cfg, "Python Tutorial", "Learn python basics")

	t.Run("single term in title", func(t *testing.T) {
		v := DocumentVector(cfg, "Runs daily with friends weekly", "")
		got := Rank(v, ParseWebSearch(cfg, "running"), DefaultWeights)
		assert.InDelta(t, 1/harmonicScale, got, 1e-6)
	})

	t.Run("term in title and body", func(t *testing.T) {
		got := Rank(tutorial, ParseWebSearch(cfg, "python"), DefaultWeights)
		assert.InDelta(t, 1.1/harmonicScale, got, 1e-6)
	})

	t.Run("or with one missing operand is averaged", func(t *testing.T) {
		got := Rank(tutorial, ParseWebSearch(cfg, "python or tutoial"), DefaultWeights)
		assert.InDelta(t, 1.1/harmonicScale/2, got, 1e-6)
		assert.GreaterOrEqual(t, got, 0.3)
	})

	t.Run("and of missing operands floors at tiny rank", func(t *testing.T) {
		got := Rank(tutorial, ParseWebSearch(cfg, "pyhton tutoial"), DefaultWeights)
		assert.Equal(t, minRank, got)
	})

	t.Run("and of adjacent operands", func(t *testing.T) {
		got := Rank(tutorial, ParseWebSearch(cfg, "python tutorial"), DefaultWeights)
		assert.InDelta(t, 0.9966, got, 1e-3)
	})

	t.Run("body only weight", func(t *testing.T) {
		v := DocumentVector(cfg, "Pyth notes", "python tips")
		got := Rank(v, ParseWebSearch(cfg, "python"), DefaultWeights)
		assert.InDelta(t, 0.4/harmonicScale, got, 1e-6)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Zero(t, Rank(tutorial, ParseWebSearch(cfg, "the"), DefaultWeights))
	})
}

func TestWordDistance(t *testing.T) {
	assert.Greater(t, wordDistance(1), wordDistance(2))
	assert.Equal(t, 1e-30, wordDistance(101))
}
