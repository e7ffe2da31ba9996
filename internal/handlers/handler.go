package handlers

import (
	"net/http"
	"strings"

	"shrtn/internal/apperror"
	"shrtn/internal/config"
	"shrtn/internal/forms"
	"shrtn/internal/metrics"
	"shrtn/internal/repository"
	"shrtn/internal/services"
	"shrtn/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *repository.Store
	shortener *services.ShortenerService
	accounts  *services.AccountService
	sessions  *session.Manager
	qr        *services.QRService
	metrics   *metrics.Metrics
}

func NewHandler(
	cfg config.Config,
	logger *zap.Logger,
	store *repository.Store,
	shortener *services.ShortenerService,
	accounts *services.AccountService,
	sessions *session.Manager,
	qr *services.QRService,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		shortener: shortener,
		accounts:  accounts,
		sessions:  sessions,
		qr:        qr,
		metrics:   m,
	}
}

// render fills the keys every page reads before executing it.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = currentUser(c)
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.FieldErrors(nil)
	}
	c.HTML(status, page, data)
}

// renderError answers with the page matching the error kind. Form
// validation errors never get here; handlers re-render their own form.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.NotFound:
		h.render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not found"})
	case apperror.Unauthorized:
		c.Redirect(http.StatusFound, "/login")
	case apperror.ServiceUnavailable:
		h.logger.Warn("service unavailable", zap.String("request_id", requestID(c)), zap.Error(err))
		h.render(c, http.StatusServiceUnavailable, "503.html", gin.H{"Title": "Unavailable"})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		h.render(c, http.StatusInternalServerError, "500.html", gin.H{
			"Title":     "Error",
			"RequestID": requestID(c),
		})
	}
}

// baseURL is the absolute prefix shown in front of aliases.
func (h *Handler) baseURL(c *gin.Context) string {
	if h.cfg.BaseURL != "" {
		return strings.TrimRight(h.cfg.BaseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
