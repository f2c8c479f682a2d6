package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	principalKey    = "principal"
)

// RequestID tags each request with an id, generating one when the
// client did not send its own.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			buf := make([]byte, 16)
			if _, err := rand.Read(buf); err == nil {
				id = hex.EncodeToString(buf)
			}
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each completed request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		id, _ := c.Get(requestIDHeader)
		idStr, _ := id.(string)
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", idStr,
			"ip", c.ClientIP(),
		)
	}
}

// Auth validates the Bearer session token and stores the Principal in
// the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "missing token", nil))
			c.Abort()
			return
		}
		p, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			RespondError(c, NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil))
			c.Abort()
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom retrieves the authenticated caller set by Auth.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || !p.IsAdmin() {
			RespondError(c, NewAppError(http.StatusForbidden, "FORBIDDEN", "only admins can perform this action", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePasswordChanged blocks accounts that still carry an initial or
// admin-reset password; only the change-password and logout surfaces
// stay usable until the password is rotated.
func RequirePasswordChanged() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if ok && p.MustChangePassword {
			RespondError(c, NewAppError(http.StatusForbidden, "PASSWORD_CHANGE_REQUIRED",
				"you must change your password before using the system", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
