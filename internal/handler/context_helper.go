package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/middleware"
	"github.com/dojokai/dojo-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorID returns the authenticated user's ID for audit trails, empty when
// the route is unauthenticated.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
