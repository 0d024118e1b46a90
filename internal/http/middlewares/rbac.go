package middlewares

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if p.Role != required {
			abortWithError(c, http.StatusForbidden, "forbidden",
				"User role "+string(p.Role)+" is not authorized to access this route")
			return
		}
		c.Next()
	}
}
