package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "social-listening-gateway"

// OperatorClaims identify the person driving the control panel.
type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// GenerateJWTToken signs an operator token valid for ttl.
func GenerateJWTToken(operator string, secret []byte, ttl time.Duration) (string, error) {
	if operator == "" {
		return "", errors.New("operator is required")
	}
	if len(secret) == 0 {
		return "", errors.New("signing secret is required")
	}

	now := time.Now()
	claims := OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWTToken verifies an operator token and returns the operator name.
func ParseJWTToken(tokenString string, secret []byte) (string, error) {
	var claims OperatorClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid operator token: %w", err)
	}
	if claims.Operator == "" {
		return "", errors.New("invalid operator token: missing operator")
	}
	return claims.Operator, nil
}

// GenerateHMACKey returns a random 256-bit key, base64 encoded, suitable as a
// PANEL_SIGNING_SECRET.
func GenerateHMACKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
