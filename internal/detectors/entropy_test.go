package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShannonEntropy(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"aaaa", 0},
		{"ab", 1},
		{"abcd", 2},
		{"aabb", 1},
		{"aK9fT2mZ7qL4xR8pW1vB6cY3nJ0hS5dE", 5},
		{"1234567890abcdef", 4},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, ShannonEntropy(c.in), 1e-9, c.in)
	}
}

func TestShannonEntropy_CodePoints(t *testing.T) {
	// two distinct runes, each multi-byte
	assert.InDelta(t, 1.0, ShannonEntropy("ééàà"), 1e-9)
}

func TestEntropyScore(t *testing.T) {
	assert.Equal(t, 0, entropyScore(0))
	assert.Equal(t, 60, entropyScore(3.0))
	assert.Equal(t, 100, entropyScore(5.0))
	assert.Equal(t, 100, entropyScore(6.5))
}
