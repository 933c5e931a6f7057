package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/response"
)

const (
	// ContextUserKey holds the verified *models.JWTClaims.
	ContextUserKey = "currentUser"
	// UserIDKey holds the caller's user id for the request log.
	UserIDKey = "user_id"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT rejects requests without a valid "Authorization: Bearer" token and
// stores the claims for RBAC and handlers.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *models.JWTClaims
			if claims, err = validator.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
				c.Set(UserIDKey, claims.UserID)
				c.Next()
				return
			}
		}
		response.Error(c, err)
		c.Abort()
	}
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || !strings.EqualFold(scheme, "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

// CurrentUser returns the claims stored by JWT.
func CurrentUser(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := c.Value(ContextUserKey).(*models.JWTClaims)
	return claims, ok && claims != nil
}
