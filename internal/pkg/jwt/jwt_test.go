package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	s := NewSigner("secret")
	token, err := s.Sign("operator", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseRejectsOtherSecretAndExpired(t *testing.T) {
	token, err := NewSigner("one").Sign("operator", "admin", time.Hour)
	require.NoError(t, err)
	_, err = NewSigner("two").Parse(token)
	assert.Error(t, err)

	expired, err := NewSigner("one").Sign("operator", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = NewSigner("one").Parse(expired)
	assert.Error(t, err)
}

func TestEmptySecretDisablesTokens(t *testing.T) {
	s := NewSigner("")
	_, err := s.Sign("operator", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = s.Parse("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}
