package middlewares

import (
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"
	CtxPrincipal = "auth.principal"
)

func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	// fallback header
	return c.GetHeader(requestIDHeader)
}

// PrincipalFromContext returns the caller set by RequireAuth.
func PrincipalFromContext(c *gin.Context) (user.Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok && p.ID != ""
}

// abortWithError writes the same error envelope the handlers use.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":    "error",
		"code":      code,
		"message":   message,
		"requestId": RequestIDFrom(c),
	})
}
