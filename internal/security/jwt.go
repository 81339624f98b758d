package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims carries the authenticated user identity inside a token.
type UserClaims struct {
	UserID   uint64 `json:"uid"`      // Authenticated user ID.
	Username string `json:"username"` // Login name at issue time.
	jwt.RegisteredClaims
}

// IssueUserToken signs a token for the user with the given expiry.
func IssueUserToken(secret string, userID uint64, username string, expiry time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: empty jwt secret")
	}
	now := time.Now().UTC()
	claims := UserClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a signed token and returns its claims.
func ParseUserToken(secret, raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("security: invalid token")
	}
	return claims, nil
}
