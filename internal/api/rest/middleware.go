package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/gate"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

const sessionKey = "session"

// SessionVerifier resolves bearer tokens into sessions.
type SessionVerifier interface {
	Session(tokenString string) model.Session
}

// RequestLogger logs method, path, status and duration for each request.
func RequestLogger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// SessionMiddleware attaches the request's session to the context. Requests
// without a valid token carry the anonymous session; they are only rejected
// later, by the gate, and only on protected routes.
func SessionMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		c.Set(sessionKey, verifier.Session(tokenString))
		c.Next()
	}
}

// SessionFromContext reads the session set by SessionMiddleware.
func SessionFromContext(c *gin.Context) model.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(model.Session); ok {
			return session
		}
	}
	return model.Anonymous()
}

// RequireRoles translates the gate's pure decision into HTTP semantics for
// protected routes.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)

		decision := gate.Decide(gate.Input{
			SessionLoading: session.Loading,
			User:           session.User,
			Role:           session.Role,
			RequiredRoles:  roles,
			Location:       c.Request.URL.Path,
		})

		switch decision.Action {
		case gate.Admit:
			c.Next()
		case gate.Wait:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session resolving"})
		case gate.RedirectLogin:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"redirect":  decision.RedirectTo,
				"return_to": decision.ReturnTo,
			})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"redirect": decision.RedirectTo,
			})
		}
	}
}
