package handlers

import (
	"net/http"
	"path/filepath"

	"tumblelog/internal/logger"
	"tumblelog/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Config points the HTTP layer at its on-disk collaborators.
type Config struct {
	TemplatesGlob string // e.g. "web/templates/*.html"
	StaticDir     string // served under /static
	UploadsDir    string // upload destination, served under /media
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	cfg      Config
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, cfg Config) *Handler {
	return &Handler{services: services, log: log, cfg: cfg}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h.loadTemplates(router)
	h.registerAssetRoutes(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Every request resolves the session cookie into the current user first.
	router.Use(h.currentUserMiddleware)

	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	// Live feed over WebSocket (HTTP upgrade) — same port
	router.GET("/ws", h.wsFeed)

	return router
}

// loadTemplates installs the HTML renderer when template files are present.
// Tests that only exercise JSON routes run without any templates on disk.
func (h *Handler) loadTemplates(router *gin.Engine) {
	if h.cfg.TemplatesGlob == "" {
		return
	}
	if matches, err := filepath.Glob(h.cfg.TemplatesGlob); err != nil || len(matches) == 0 {
		return
	}
	router.LoadHTMLGlob(h.cfg.TemplatesGlob)
}

func (h *Handler) registerAssetRoutes(r *gin.Engine) {
	if h.cfg.StaticDir != "" {
		r.Static("/static", h.cfg.StaticDir)
		r.StaticFile("/favicon.ico", filepath.Join(h.cfg.StaticDir, "favicon.ico"))
	}
	if h.cfg.UploadsDir != "" {
		r.Static("/media", h.cfg.UploadsDir)
	}
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.feedPage)

	r.GET("/signup", h.signupPage)
	r.POST("/signup", h.signUp)
	r.GET("/login", h.loginPage)
	r.POST("/login", h.logIn)
	r.POST("/logout", h.logOut)

	authed := r.Group("/", h.requireUser)
	{
		authed.GET("/upload", h.uploadPage)
		authed.POST("/posts", h.createPost)
		authed.POST("/posts/:id/delete", h.deletePost)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	r.POST("/auth/token", h.issueToken)

	api := r.Group("/api/v1", h.bearerMiddleware)
	{
		api.GET("/me", h.me)
		api.GET("/posts", h.listPosts)
		api.POST("/posts", h.createPostJSON)
		api.DELETE("/posts/:id", h.deletePostJSON)
	}
}

// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
