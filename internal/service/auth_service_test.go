package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role models.UserRole, expires time.Time) models.JWTClaims {
	return models.JWTClaims{
		UserID: "teacher-1",
		Role:   role,
		Email:  "t@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService("secret", nil)
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims("teacher", time.Now().Add(time.Hour)))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewAuthService("secret", nil)

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(models.RoleAdmin, time.Now().Add(time.Hour))),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims(models.RoleAdmin, time.Now().Add(-time.Minute))),
		"wrong alg":    signToken(t, jwt.SigningMethodHS512, []byte("secret"), validClaims(models.RoleAdmin, time.Now().Add(time.Hour))),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}
