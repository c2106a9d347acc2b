package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, otpDigits)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9', "unexpected character %q", ch)
		}
	}
}

func TestCodesEqual(t *testing.T) {
	assert.True(t, codesEqual("123456", "123456"))
	assert.False(t, codesEqual("123456", "654321"))
	assert.False(t, codesEqual("123456", "12345"))
	assert.False(t, codesEqual("", "123456"))
}
