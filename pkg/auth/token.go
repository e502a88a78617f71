// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "catalog-identity"

// ErrInvalidToken wraps every token validation failure.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and validates viewer JWTs.
type TokenManager interface {
	Generate(viewerID int64) (string, error)
	Validate(tokenString string) (*Claims, error)
}

type jwtManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims is the JWT payload. Subject carries the viewer id as a decimal string too,
// for identity services that only set "sub".
type Claims struct {
	ViewerID int64 `json:"viewer_id"`
	jwt.RegisteredClaims
}

// NewTokenManager returns an HS256 TokenManager. secretKey must not be empty.
func NewTokenManager(secretKey string, tokenDuration time.Duration) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if tokenDuration <= 0 {
		return nil, fmt.Errorf("JWT token duration must be positive, got %s", tokenDuration)
	}
	return &jwtManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

func (m *jwtManager) Generate(viewerID int64) (string, error) {
	if viewerID <= 0 {
		return "", fmt.Errorf("viewer id must be positive, got %d", viewerID)
	}
	now := m.now()
	claims := &Claims{
		ViewerID: viewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(viewerID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ViewerID == 0 && claims.Subject != "" {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric subject", ErrInvalidToken)
		}
		claims.ViewerID = id
	}
	if claims.ViewerID <= 0 {
		return nil, fmt.Errorf("%w: missing viewer id", ErrInvalidToken)
	}
	return claims, nil
}
