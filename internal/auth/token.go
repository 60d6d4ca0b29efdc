// Package auth issues and verifies the bearer tokens gating the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sibogoje/crm/internal/shared"
)

const (
	tokenIssuer   = "crm-app"
	tokenAudience = "crm-users"
)

// Claims is the token payload. The identity block mirrors shared.Identity;
// company_id in particular is the tenant key for every scoped operation.
type Claims struct {
	Data shared.Identity `json:"data"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens. The secret is
// process-wide configuration loaded once at startup.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager with the configured secret and TTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token carrying the given identity.
func (m *TokenManager) Issue(id shared.Identity) (string, error) {
	now := m.now()
	claims := Claims{
		Data: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ErrInvalidToken is returned for any token that fails verification. The
// reason (expiry, signature, malformed) is deliberately not exposed.
var ErrInvalidToken = errors.New("invalid token")

// Verify parses and validates a token and returns the embedded identity.
func (m *TokenManager) Verify(tokenString string) (shared.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil || !token.Valid {
		return shared.Identity{}, ErrInvalidToken
	}
	return claims.Data, nil
}
