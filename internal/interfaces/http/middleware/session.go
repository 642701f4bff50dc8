// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionContextKey = "session_id"
	sessionHeader     = "X-Session-ID"
	sessionCookie     = "session_id"

	sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days
)

// SessionID resolves the anonymous shopping session for a request.
// Clients may pass an explicit X-Session-ID header (mobile apps);
// browser clients get a session cookie on first contact.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)

		if sessionID == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				sessionID = cookie
			}
		}

		if sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(sessionCookie, sessionID, sessionCookieMaxAge, "/", "", false, true)
		}

		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionID extracts the session ID from gin context
func GetSessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return "", false
	}
	sessionID, ok := value.(string)
	return sessionID, ok && sessionID != ""
}

// RequireSessionID aborts with 400 when no session could be resolved
func RequireSessionID(c *gin.Context) (string, bool) {
	sessionID, ok := GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Session ID required",
		})
		c.Abort()
	}
	return sessionID, ok
}
