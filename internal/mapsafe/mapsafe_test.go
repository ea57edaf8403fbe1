package mapsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	m := map[string]any{
		"language":    "en",
		"beam_size":   5,
		"best_of":     float64(3),
		"temperature": 0,
		"translate":   true,
		"prompt":      42,
	}

	assert.Equal(t, "en", Get(m, "language", ""))
	assert.Equal(t, 5, Get(m, "beam_size", -1))
	assert.Equal(t, 3, Get(m, "best_of", 2))
	assert.Equal(t, 0.0, Get(m, "temperature", 0.2))
	assert.True(t, Get(m, "translate", false))
	assert.Equal(t, "fallback", Get(m, "prompt", "fallback"))
	assert.Equal(t, "auto", Get(m, "missing", "auto"))
	assert.Equal(t, 7, Get[int](nil, "beam_size", 7))
}
