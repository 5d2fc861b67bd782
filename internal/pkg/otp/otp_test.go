package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := Generate(5)
		require.NoError(t, err)
		require.Len(t, code, 5)
		for _, c := range code {
			assert.Contains(t, alphabet, string(c))
		}
	}
}

func TestGenerate_ExcludesAmbiguousCharacters(t *testing.T) {
	assert.NotContains(t, alphabet, "I")
	assert.NotContains(t, alphabet, "O")
}

func TestGenerate_UniformRange(t *testing.T) {
	// 256 does not divide by the alphabet size, so a plain modulo would
	// favor the first characters. The cutoff must land on a multiple of
	// the alphabet size.
	assert.Zero(t, maxUniform%len(alphabet))
	assert.LessOrEqual(t, maxUniform, 256)
}

func TestGenerate_CodesDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := Generate(8)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "generator returned constant output")
}
