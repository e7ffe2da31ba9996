package handlers

import (
	"context"
	"net/http"
	"time"

	"shrtn/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "shrtn_session"

func (h *Handler) SetupRouter() (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	store.Options(h.sessionOptions(0))

	// Middleware
	r.Use(h.RequestID())
	r.Use(h.Recovery())
	r.Use(h.AccessLog())
	r.Use(h.Metrics())
	r.Use(sessions.Sessions(sessionCookieName, store))
	r.Use(h.CurrentUser())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	// Public Routes
	r.GET("/", h.ShowIndex)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.HandleRegisterForm)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.HandleLoginForm)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(h.AuthRequired())
	{
		authorized.GET("/create_url", h.ShowCreateURL)
		authorized.POST("/add_link", h.HandleAddLink)
		authorized.GET("/stats", h.ShowStats)
		authorized.GET("/logout", h.Logout)
	}

	// Catch-all Redirects
	r.GET("/:alias", h.RedirectToURL)

	r.NoRoute(func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not found"})
	})

	return r, nil
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
