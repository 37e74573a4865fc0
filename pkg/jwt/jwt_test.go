package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	token, err := Generate("secreto", "u1", RoleBodeguero, "distribucion-api", 5)
	require.NoError(t, err)

	claims, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleBodeguero, claims.Role)
	assert.Equal(t, "distribucion-api", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", "u1", RoleAdmin, "", 5)
	require.NoError(t, err)
	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("secreto", "u1", RoleAdmin, "", -1)
	require.NoError(t, err)
	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestSecretoVacio(t *testing.T) {
	_, err := Generate("", "u1", RoleAdmin, "", 5)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = Parse("", "x")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
