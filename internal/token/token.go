// Package token issues and verifies the HS256 access tokens carrying an actor's id and role.
package token

import (
	"errors"
	"time"

	"inventario/internal/model"
	"inventario/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Issue signs a token for actor valid for ttl.
func Issue(secret []byte, actor model.Actor, ttl time.Duration, now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  actor.ID.String(),
		"role": string(actor.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return t.SignedString(secret)
}

// Parse validates the signature and expiry and returns the actor encoded in the token.
func Parse(secret []byte, tokenString string) (model.Actor, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !t.Valid {
		return model.Actor{}, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}

	// unknown roles are kept as-is; rbac denies them everything
	role, _ := claims["role"].(string)
	return model.Actor{ID: id, Role: rbac.Role(role)}, nil
}
