package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestHashAndVerifyCode(t *testing.T) {
	hashed, err := HashCode("AbC123xyZ0")
	require.NoError(t, err)

	assert.True(t, VerifyCode(hashed, "AbC123xyZ0"))
	assert.False(t, VerifyCode(hashed, "abc123xyz0"))
	assert.False(t, VerifyCode(hashed, "AbC123xyZ"))
	assert.False(t, VerifyCode(hashed, ""))
	assert.False(t, VerifyCode("", "AbC123xyZ0"))
}
