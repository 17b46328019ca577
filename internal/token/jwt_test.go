package token

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_SessionToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	accountID := uuid.New()

	tokenString, err := j.Generate(accountID)
	require.NoError(t, err)

	got, err := j.Parse(tokenString)
	require.NoError(t, err)
	require.Equal(t, accountID, got)
}

func TestJWT_WrongSecret(t *testing.T) {
	accountID := uuid.New()

	tokenString, err := NewJWT("secret").Generate(accountID)
	require.NoError(t, err)

	_, err = NewJWT("other").Parse(tokenString)
	require.Error(t, err)
}

func TestJWT_GarbageToken(t *testing.T) {
	_, err := NewJWT("secret").Parse("not-a-token")
	require.Error(t, err)
}

func TestJWT_MissingAccountID(t *testing.T) {
	j := NewJWT("secret")

	tokenString, err := j.Generate(uuid.Nil)
	require.NoError(t, err)

	_, err = j.Parse(tokenString)
	require.Error(t, err)
}
