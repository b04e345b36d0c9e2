package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/http/response"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AdminAuth
}

func NewAuthMiddleware(log *logger.Logger, auth services.AdminAuth) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), auth: auth}
}

// RequireAdmin accepts a bearer token, or ?token= for EventSource clients
// that cannot set headers.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.RespondAPIError(c, apierr.Unauthorized("auth", "missing or invalid token"))
			return
		}
		ctx, err := am.auth.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			am.log.Debug("admin token rejected", "path", c.FullPath(), "error", err)
			response.RespondAPIError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if q := strings.TrimSpace(c.Query("token")); q != "" {
		return q
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
