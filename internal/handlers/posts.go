package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tumblelog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	maxUploadBytes = 16 << 20 // 16 MB
)

func (h *Handler) feedPage(c *gin.Context) {
	posts, err := h.services.Feed(c.Request.Context(), service.FeedFilter{})
	if err != nil {
		h.internalError(c, "feed_load_failed", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"user":  currentUser(c),
		"posts": posts,
	})
}

func (h *Handler) uploadPage(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", gin.H{"user": currentUser(c)})
}

// createPost handles the multipart upload form: stores the file (if any)
// under the uploads dir, then persists the post.
func (h *Handler) createPost(c *gin.Context) {
	user := currentUser(c)

	filePath, err := h.storeUpload(c)
	if err != nil {
		c.HTML(http.StatusBadRequest, "upload.html", gin.H{
			"user":  user,
			"error": "Could not store the uploaded file",
		})
		return
	}

	_, err = h.services.Posts.Create(c.Request.Context(), service.NewPost{
		UserID:   user.ID,
		Title:    c.PostForm("title"),
		Body:     c.PostForm("body"),
		FilePath: filePath,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusBadRequest, "upload.html", gin.H{
				"user":   user,
				"fields": verr.Fields,
				"title":  c.PostForm("title"),
				"body":   c.PostForm("body"),
			})
			return
		}
		h.internalError(c, "post_create_failed", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) deletePost(c *gin.Context) {
	user := currentUser(c)
	err := h.services.Posts.Delete(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"message": "Post not found"})
			return
		}
		h.internalError(c, "post_delete_failed", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// storeUpload saves the optional "file" form part and returns its name
// relative to the uploads dir, or "" when no file was sent.
func (h *Handler) storeUpload(c *gin.Context) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		// No file part is fine; a text-only post.
		return "", nil
	}
	if file.Size > maxUploadBytes {
		return "", fmt.Errorf("upload too large: %d bytes", file.Size)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.cfg.UploadsDir, name)); err != nil {
		if h.log != nil {
			h.log.Errorw("upload_store_failed", "err", err, "filename", file.Filename)
		}
		return "", err
	}
	return name, nil
}

// ---- JSON API ----

// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]int  "user_id"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": apiUserID(c)})
}

// @Summary      List posts
// @Description  Filter posts by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         posts
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2025-08-01)
// @Param        to     query   string  false  "End of range; date-only treated as end of day"  example(2025-08-31)
// @Param        limit  query   int     false  "Maximum number of posts"
// @Success      200   {object}  map[string]interface{}  "count, posts"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/posts [get]
// @Security     BearerAuth
func (h *Handler) listPosts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		err  error
	)
	// Parse 'from' (optional)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// Parse 'to' (optional). If only a date is provided, make it end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	limit := 0
	if qs := c.Query("limit"); qs != "" {
		if v, perr := strconv.Atoi(qs); perr == nil && v > 0 {
			limit = v
		}
	}

	posts, err := h.services.Feed(ctx, service.FeedFilter{From: from, To: to, Limit: limit})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("posts_list_failed", "err", err, "from", from, "to", to)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

type createPostInput struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        post  body      object  true  "title and body"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/posts [post]
// @Security     BearerAuth
func (h *Handler) createPostJSON(c *gin.Context) {
	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.services.Posts.Create(c.Request.Context(), service.NewPost{
		UserID: apiUserID(c),
		Title:  input.Title,
		Body:   input.Body,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
			return
		}
		h.internalErrorJSON(c, "post_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// @Summary      Delete post
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      204  "deleted"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deletePostJSON(c *gin.Context) {
	err := h.services.Posts.Delete(c.Request.Context(), c.Param("id"), apiUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		h.internalErrorJSON(c, "post_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
