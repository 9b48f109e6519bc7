package auth

import (
	"testing"
	"time"

	"eventreg/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWT(secret)

	token, err := issuer.Issue("user-123", "u@example.com", []string{"admin", "attendee"}, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "attendee"}, claims.Roles)
}

func TestJWT_Verify(t *testing.T) {
	issuer := NewJWT("test-secret")
	token, err := issuer.Issue("user-123", "u@example.com", []string{"organizer"}, time.Hour)
	require.NoError(t, err)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", p.UserID)
	assert.True(t, p.IsStaff())
}

func TestJWT_Verify_Rejects(t *testing.T) {
	issuer := NewJWT("test-secret")
	other := NewJWT("other-secret")

	foreign, err := other.Issue("user-1", "u@example.com", nil, time.Hour)
	require.NoError(t, err)

	expired, err := issuer.Issue("user-1", "u@example.com", nil, -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := issuer.Issue("", "u@example.com", nil, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     unsigned,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}
