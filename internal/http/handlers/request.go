package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 5 * time.Second

// withTimeout bounds the store work of one request; it still ends early when
// the client goes away.
func withTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), storeTimeout)
}

// principal fetches the caller set by RequireAuth, answering 401 when absent.
func principal(ctx *gin.Context) (user.Principal, bool) {
	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authorized, no token")
		return user.Principal{}, false
	}
	return p, true
}

// parseIntDefault reads a numeric query value; anything unusable yields def.
func parseIntDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
