package handlers

import (
	"errors"
	"net/http"

	"tumblelog/internal/service"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for the token endpoint.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"user": currentUser(c)})
}

func (h *Handler) signupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"user": currentUser(c)})
}

// logIn handles the browser login form. Any credential failure re-renders
// the form with one generic message; the response never says whether the
// username exists.
func (h *Handler) logIn(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userID, err := h.services.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("login_rejected", "username", username)
			}
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"error":    "Invalid username or password",
				"username": username,
			})
			return
		}
		h.internalError(c, "login_failed", err)
		return
	}

	h.startSession(c, userID)
}

// signUp handles the browser signup form and logs the new account in.
func (h *Handler) signUp(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	userID, err := h.services.Register(c.Request.Context(), username, email, password)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			c.HTML(http.StatusConflict, "signup.html", gin.H{
				"error":    "That username is already taken",
				"username": username,
				"email":    email,
			})
		case errors.As(err, &verr):
			c.HTML(http.StatusBadRequest, "signup.html", gin.H{
				"fields":   verr.Fields,
				"username": username,
				"email":    email,
			})
		default:
			h.internalError(c, "signup_failed", err)
		}
		return
	}

	h.startSession(c, userID)
}

// logOut clears the session binding and the cookie. Safe to call when
// already anonymous.
func (h *Handler) logOut(c *gin.Context) {
	if sid, err := c.Cookie(sessionCookieName); err == nil && sid != "" {
		if err := h.services.Detach(c.Request.Context(), sid); err != nil {
			h.internalError(c, "logout_failed", err)
			return
		}
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// @Summary      Issue API token
// @Description  Exchanges username/password for a bearer token for /api/v1.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      object  true  "username and password"
// @Success      200  {object}  map[string]string  "token"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/token [post]
func (h *Handler) issueToken(c *gin.Context) {
	var input authCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_token_rejected", "username", input.Username)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.internalErrorJSON(c, "auth_token_failed", err)
		return
	}

	token, err := h.services.Issue(userID)
	if err != nil {
		h.internalErrorJSON(c, "auth_token_sign_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// startSession binds (or rebinds) the browser session to the user and
// redirects home. The cookie has no client-side expiry; the server-side TTL
// is authoritative.
func (h *Handler) startSession(c *gin.Context, userID int) {
	sid, err := c.Cookie(sessionCookieName)
	if err != nil || sid == "" {
		sid = h.services.NewID()
	}
	if err := h.services.Attach(c.Request.Context(), sid, userID); err != nil {
		h.internalError(c, "session_attach_failed", err)
		return
	}
	c.SetCookie(sessionCookieName, sid, 0, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) internalError(c *gin.Context, event string, err error) {
	if h.log != nil {
		h.log.Errorw(event, "err", err)
	}
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"message": "Something went wrong",
	})
	c.Abort()
}

func (h *Handler) internalErrorJSON(c *gin.Context, event string, err error) {
	if h.log != nil {
		h.log.Errorw(event, "err", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	c.Abort()
}
