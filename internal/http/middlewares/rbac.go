package middlewares

import (
	"net/http"

	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if id.Role != required {
			abortWithError(c, http.StatusForbidden, "forbidden", "Only "+string(required)+"s can perform this action")
			return
		}
		c.Next()
	}
}
