package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"shrtn/internal/models"
	"shrtn/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "user"

	sessionTokenKey     = "token"
	sessionRememberKey  = "remember"
	sessionRefreshedKey = "refreshed"

	// Remembered cookies are re-signed at most this often, which keeps them
	// inside the cookie codec's own timestamp window.
	sessionRefreshInterval = 24 * time.Hour
)

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// currentUser returns the signed-in user or nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func (h *Handler) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		h.logger.Error("panic recovered",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		h.renderError(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

func (h *Handler) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestID(c)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			h.logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			h.logger.Warn("request", fields...)
		default:
			h.logger.Info("request", fields...)
		}
	}
}

func (h *Handler) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CurrentUser resolves the session token to a user. Any failure leaves the
// request anonymous.
func (h *Handler) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(sessionTokenKey).(string)
		if token == "" {
			c.Next()
			return
		}

		userID, err := h.sessions.Parse(token)
		if err != nil {
			h.logger.Debug("session token rejected", zap.String("request_id", requestID(c)), zap.Error(err))
			c.Next()
			return
		}

		user, err := h.accounts.UserByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, services.ErrUserNotFound) {
				h.logger.Warn("session user lookup failed", zap.String("request_id", requestID(c)), zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(userKey, user)
		h.refreshRemembered(c, session)
		c.Next()
	}
}

func (h *Handler) refreshRemembered(c *gin.Context, session sessions.Session) {
	if remember, _ := session.Get(sessionRememberKey).(bool); !remember {
		return
	}
	refreshed, _ := session.Get(sessionRefreshedKey).(int64)
	if time.Since(time.Unix(refreshed, 0)) < sessionRefreshInterval {
		return
	}
	session.Set(sessionRefreshedKey, time.Now().Unix())
	session.Options(h.sessionOptions(h.cfg.RememberTTL))
	if err := session.Save(); err != nil {
		h.logger.Warn("session refresh failed", zap.String("request_id", requestID(c)), zap.Error(err))
	}
}

func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// sessionOptions builds cookie options. A zero maxAge makes a browser-session
// cookie; a negative one deletes the cookie.
func (h *Handler) sessionOptions(maxAge time.Duration) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
