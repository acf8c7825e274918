package common

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandURLString_LengthAndAlphabet(t *testing.T) {
	s, err := MakeRandURLString(TokenSize)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(s)
	require.NoError(t, err)
	assert.Len(t, raw, TokenSize)
	assert.False(t, strings.ContainsAny(s, "+/="), "value must be URL safe: %q", s)
}

func TestMakeRandURLString_NoCollisions(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		s, err := MakeRandURLString(TokenSize)
		require.NoError(t, err)
		if _, dup := seen[s]; dup {
			t.Fatalf("collision after %d values: %q", i, s)
		}
		seen[s] = struct{}{}
	}
}

func TestMakeRandURLString_ZeroSize(t *testing.T) {
	s, err := MakeRandURLString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestShortToken(t *testing.T) {
	assert.Equal(t, "abc", ShortToken("abc"))
	assert.Equal(t, "abcdef…", ShortToken("abcdefghijkl"))
}
