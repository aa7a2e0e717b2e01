package handlers

import (
	"net/http"
	"strings"

	"tumblelog/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName = "tumblelog_session"

	currentUserKey = "currentUser"
	userIDKey      = "userId"
)

// currentUserMiddleware resolves the session cookie into the current user
// for every request, so page handlers and templates can read it. No cookie,
// an expired session, or a deleted user all mean anonymous; only a store
// failure aborts the request.
func (h *Handler) currentUserMiddleware(c *gin.Context) {
	sid, err := c.Cookie(sessionCookieName)
	if err != nil || sid == "" {
		c.Next()
		return
	}

	user, err := h.services.Resolve(c.Request.Context(), sid)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("session_resolve_failed", "err", err)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
		})
		return
	}
	if user != nil {
		c.Set(currentUserKey, user)
	}
	c.Next()
}

// requireUser gates browser routes: anonymous requests are sent to /login.
func (h *Handler) requireUser(c *gin.Context) {
	if currentUser(c) == nil {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Next()
}

// currentUser returns the session-resolved user, or nil when anonymous.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// bearerMiddleware guards the JSON API with an Authorization: Bearer token.
func (h *Handler) bearerMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userID, err := h.services.Parse(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(userIDKey, userID)
	c.Next()
}

// apiUserID returns the user id the bearer middleware stored.
func apiUserID(c *gin.Context) int {
	v, _ := c.Get(userIDKey)
	id, _ := v.(int)
	return id
}
