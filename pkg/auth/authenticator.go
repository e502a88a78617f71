// pkg/auth/authenticator.go
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

// Authenticator resolves the caller of a request. It never fails: a missing or bad
// credential is simply an anonymous result.
type Authenticator interface {
	Authenticate(r *http.Request) domain.AuthResult
}

// BearerAuthenticator reads "Authorization: Bearer <jwt>".
type BearerAuthenticator struct {
	tokens TokenManager
	logger *slog.Logger
}

func NewBearerAuthenticator(tokens TokenManager, logger *slog.Logger) *BearerAuthenticator {
	return &BearerAuthenticator{tokens: tokens, logger: logger}
}

func (a *BearerAuthenticator) Authenticate(r *http.Request) domain.AuthResult {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Anonymous()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		a.logger.WarnContext(r.Context(), "Invalid Authorization header format")
		return domain.Anonymous()
	}

	claims, err := a.tokens.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		a.logger.WarnContext(r.Context(), "Invalid or expired token", slog.String("error", err.Error()))
		return domain.Anonymous()
	}
	a.logger.DebugContext(r.Context(), "Token validated", slog.Int64("viewerID", claims.ViewerID))
	return domain.Authenticated(claims.ViewerID)
}

// AuthenticatorFunc adapts a plain function, mostly for tests.
type AuthenticatorFunc func(r *http.Request) domain.AuthResult

func (f AuthenticatorFunc) Authenticate(r *http.Request) domain.AuthResult { return f(r) }
