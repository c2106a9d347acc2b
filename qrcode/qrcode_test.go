package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGenerate(t *testing.T) {
	png, err := Generate("https://example.com/abc123", 0)
	require.NoError(t, err)
	require.Greater(t, len(png), len(pngHeader))
	assert.Equal(t, pngHeader, png[:4])
}

func TestGenerateEmptyContent(t *testing.T) {
	_, err := Generate("   ", 256)
	assert.ErrorIs(t, err, ErrEmptyContent)
}
