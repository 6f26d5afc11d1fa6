package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePublicID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{8}$`)
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		id, err := GeneratePublicID()
		require.NoError(t, err)
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestGenerate_RejectsNonPositive(t *testing.T) {
	_, err := Generate(0)
	assert.Error(t, err)

	_, err = GenerateHex(-1)
	assert.Error(t, err)
}

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
