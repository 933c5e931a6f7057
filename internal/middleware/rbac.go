package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/response"
)

// SelfParam lets a student read insights addressed by their own id.
const SelfParam = "SELF"

type access struct {
	roles map[models.UserRole]bool
	self  bool
}

func (a access) permits(claims *models.JWTClaims, studentID string) bool {
	if a.roles[claims.Role] {
		return true
	}
	return a.self && studentID != "" && studentID == claims.UserID
}

// RBAC admits callers whose role is listed. The SELF entry also admits a
// caller whose user id equals the :studentId route parameter. It must run
// after JWT.
func RBAC(allowed ...string) gin.HandlerFunc {
	a := access{roles: make(map[models.UserRole]bool, len(allowed))}
	for _, entry := range allowed {
		if entry == SelfParam {
			a.self = true
			continue
		}
		a.roles[models.UserRole(entry)] = true
	}

	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		switch {
		case !ok:
			response.Error(c, appErrors.ErrUnauthorized)
		case a.permits(claims, c.Param("studentId")):
			c.Next()
			return
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not read this insight"))
		}
		c.Abort()
	}
}
