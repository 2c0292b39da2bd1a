package credstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectToken_JWT(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	iat := exp.Add(-time.Hour)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "storefront",
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	info := InspectToken(raw)
	assert.False(t, info.Opaque)
	assert.Equal(t, "42", info.Subject)
	assert.Equal(t, "storefront", info.Issuer)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.True(t, info.IssuedAt.Equal(iat))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))
}

func TestInspectToken_Opaque(t *testing.T) {
	info := InspectToken("not-a-jwt")
	assert.True(t, info.Opaque)
	assert.False(t, info.Expired(time.Now()))
}
