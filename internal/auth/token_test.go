package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(Identity{ID: 42, Name: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 42, Name: "Ada"}, id)
}

func TestTokenService_Expiry(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenService(testSecret, 100*time.Hour, WithClock(fixedClock(issuedAt)))

	token, err := issuer.Issue(Identity{ID: 7, Name: "Grace"})
	require.NoError(t, err)

	before := NewTokenService(testSecret, 100*time.Hour, WithClock(fixedClock(issuedAt.Add(99*time.Hour))))
	id, err := before.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id.ID)

	after := NewTokenService(testSecret, 100*time.Hour, WithClock(fixedClock(issuedAt.Add(101*time.Hour))))
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	valid, err := svc.Issue(Identity{ID: 1, Name: "A"})
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	baseClaims := func() Claims {
		return Claims{
			UserID: 1,
			Name:   "A",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	wrongIssuer := baseClaims()
	wrongIssuer.Issuer = "someone-else"
	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil
	mismatchedSubject := baseClaims()
	mismatchedSubject.Subject = "2"

	tests := []struct {
		name  string
		token string
	}{
		{"Empty", ""},
		{"Malformed", "malformed.token.here"},
		{"Tampered", valid + "a"},
		{"Wrong secret", sign(jwt.SigningMethodHS256, []byte("another-secret"), baseClaims())},
		{"Wrong algorithm", sign(jwt.SigningMethodHS512, []byte(testSecret), baseClaims())},
		{"Unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims())},
		{"Wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"Missing expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"Subject mismatch", sign(jwt.SigningMethodHS256, []byte(testSecret), mismatchedSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_IssueWithoutSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour).Issue(Identity{ID: 1})
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: 3, Name: "Linus"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(3), id.ID)
}
