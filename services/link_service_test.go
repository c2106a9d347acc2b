package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateShortCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(charset, ch), "unexpected character %q", ch)
		}
		seen[code] = true
	}
	// 100 draws from 62^6 should not collide.
	assert.Greater(t, len(seen), 90)
}
