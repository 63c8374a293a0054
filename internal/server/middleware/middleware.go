package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/auth"
)

// Context keys set by the middlewares.
const (
	CtxRequestIDKey = "request_id"
	CtxCallerKey    = "caller"
	CtxSessionKey   = "session_id"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the incoming X-Request-ID or assigns a new ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = ulid.Make().String()
		}
		c.Set(CtxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Errors is the single place errors become HTTP responses. Handlers and
// middlewares record failures with c.Error and stop; the last recorded error
// is answered as {success:false, message}.
func Errors(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := apperror.Status(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", c.GetString(CtxRequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, gin.H{"success": false, "message": apperror.Message(err)})
	}
}

// RequireAuth verifies the bearer token and its session and stores the
// resulting Caller on the context.
func RequireAuth(svc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			_ = c.Error(apperror.Unauthorized("Missing or invalid Authorization header"))
			c.Abort()
			return
		}

		identity, err := svc.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(CtxCallerKey, identity.Caller)
		c.Set(CtxSessionKey, identity.SessionID)
		c.Next()
	}
}

// RequireAccess lets through only callers holding one of levels.
func RequireAccess(levels ...models.AccessLevel) gin.HandlerFunc {
	allowed := make(map[models.AccessLevel]struct{}, len(levels))
	for _, level := range levels {
		allowed[level] = struct{}{}
	}

	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			_ = c.Error(apperror.Unauthorized("Not authenticated"))
			c.Abort()
			return
		}
		if _, ok := allowed[caller.AccessLevel]; !ok {
			_ = c.Error(apperror.Denied("You are not allowed to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom returns the Caller stored by RequireAuth.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(CtxCallerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}

// SessionFrom returns the session id stored by RequireAuth.
func SessionFrom(c *gin.Context) string {
	return c.GetString(CtxSessionKey)
}
