package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kmatsui/go-todo-service/internal/model"
)

// TokenCodec encodes and decodes signed, time-limited claim sets using a
// process-wide secret and signing algorithm.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenCodec builds a codec for the given secret and algorithm name
// (e.g. "HS256"). An unknown algorithm is a configuration error.
func NewTokenCodec(secret, algorithm string) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	return &TokenCodec{secret: []byte(secret), method: method}, nil
}

// Encode signs the claims together with an absolute expiry ttlMinutes from
// now (wall-clock UTC) into a compact token string.
func (c *TokenCodec) Encode(claims map[string]any, ttlMinutes int) (string, error) {
	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["exp"] = jwt.NewNumericDate(time.Now().UTC().Add(time.Duration(ttlMinutes) * time.Minute))

	token := jwt.NewWithClaims(c.method, mapClaims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims. An
// expired token fails with model.ErrTokenExpired; any other defect (bad
// signature, malformed, wrong algorithm) fails with model.ErrTokenInvalid.
func (c *TokenCodec) Decode(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.ErrTokenInvalid
	}
	return claims, nil
}

// Subject extracts the "sub" claim from a decoded claim set.
func Subject(claims map[string]any) (string, bool) {
	sub, ok := claims["sub"].(string)
	return sub, ok
}
