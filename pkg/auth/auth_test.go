package auth

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

func newManager(t *testing.T) TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManagerRejectsBadConfig(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenManager(testSecret, 0)
	assert.Error(t, err)
}

func TestGenerateValidate(t *testing.T) {
	m := newManager(t)
	token, err := m.Generate(17)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(17), claims.ViewerID)
	assert.Equal(t, "17", claims.Subject)
}

func TestValidateRejects(t *testing.T) {
	m := newManager(t)
	other, err := NewTokenManager("a-completely-different-secret-value", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Generate(1)
	require.NoError(t, err)

	expiredMgr := &jwtManager{
		secretKey:     []byte(testSecret),
		tokenDuration: time.Minute,
		now:           func() time.Time { return time.Now().Add(-time.Hour) },
	}
	expired, err := expiredMgr.Generate(1)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-jwt",
		"wrong secret":   foreign,
		"expired":        expired,
		"empty":          "",
		"none algorithm": unsignedToken(t),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateFallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "23",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	got, err := newManager(t).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(23), got.ViewerID)
}

func unsignedToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ViewerID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func TestBearerAuthenticator(t *testing.T) {
	m := newManager(t)
	a := NewBearerAuthenticator(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	token, err := m.Generate(5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		authed bool
	}{
		{"no header", "", false},
		{"valid bearer", "Bearer " + token, true},
		{"lowercase scheme", "bearer " + token, true},
		{"wrong scheme", "Basic " + token, false},
		{"missing token", "Bearer ", false},
		{"bad token", "Bearer nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/mylist", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			res := a.Authenticate(r)
			id, ok := res.Viewer()
			assert.Equal(t, tt.authed, ok)
			if tt.authed {
				assert.Equal(t, int64(5), id)
			}
		})
	}
}
