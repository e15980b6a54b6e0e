package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/response"
)

// RBAC enforces role-based access control. The special value "SELF" lets a
// user through when the :id route parameter matches their own user ID.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		allowedRoles := make(map[models.UserRole]struct{})
		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[models.UserRole(a)] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}
		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// AdminOnly restricts the route to administrators.
func AdminOnly() gin.HandlerFunc {
	return RBAC(string(models.RoleAdmin))
}

// Staff allows any authenticated back-office role.
func Staff() gin.HandlerFunc {
	return RBAC(string(models.RoleAdmin), string(models.RoleInstructor), string(models.RoleStaff))
}
