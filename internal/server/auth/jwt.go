// Package auth verifies bearer tokens issued by the external identity
// provider and extracts the caller principal from them.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claim set with the caller principal.
type Claims struct {
	jwt.RegisteredClaims
	Principal string
}

// GenerateToken signs a token for principal. The service only verifies
// tokens in production; signing is used by tests and local tooling.
func GenerateToken(principal string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Principal: principal,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// PrincipalFromToken parses and verifies the token and returns the principal
// claim. Expired tokens surface as common.ErrTokenExpired so callers can
// tell them apart from forgeries.
func PrincipalFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Principal, nil
}
