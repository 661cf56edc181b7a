package token

import (
	"testing"
	"time"

	"inventario/internal/model"
	"inventario/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestIssueParse_RoundTrip(t *testing.T) {
	actor := model.Actor{ID: uuid.New(), Role: rbac.RoleOperator}

	s, err := Issue(secret, actor, time.Hour, time.Now())
	require.NoError(t, err)

	got, err := Parse(secret, s)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestParse_Expired(t *testing.T) {
	actor := model.Actor{ID: uuid.New(), Role: rbac.RoleViewer}
	s, err := Issue(secret, actor, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = Parse(secret, s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	s, err := Issue(secret, model.Actor{ID: uuid.New(), Role: rbac.RoleViewer}, time.Hour, time.Now())
	require.NoError(t, err)

	_, err = Parse([]byte("other"), s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_MissingExpiry(t *testing.T) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "VIEWER",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = Parse(secret, s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_BadSubject(t *testing.T) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "not-a-uuid",
		"role": "VIEWER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = Parse(secret, s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
