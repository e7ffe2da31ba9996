package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shrtn/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewares(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(t, h)

	r.GET("/set-token-mw", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(sessionTokenKey, c.Query("token"))
		require.NoError(t, s.Save())
		c.Status(http.StatusOK)
	})
	r.GET("/whoami-mw", func(c *gin.Context) {
		if user := currentUser(c); user != nil {
			c.String(http.StatusOK, user.Name)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/panic-mw", func(c *gin.Context) {
		panic("boom")
	})

	t.Run("AuthRequired - Unauthorized Redirect", func(t *testing.T) {
		for _, path := range []string{"/create_url", "/stats", "/logout"} {
			w := newTestClient(t, r).get(path)
			assert.Equal(t, http.StatusFound, w.Code, path)
			assert.Equal(t, "/login", w.Header().Get("Location"), path)
		}
	})

	t.Run("CurrentUser - Session Success", func(t *testing.T) {
		tc := signedIn(t, r, "alice")
		assert.Equal(t, "alice", tc.get("/whoami-mw").Body.String())
	})

	t.Run("CurrentUser - Forged Token", func(t *testing.T) {
		tc := newTestClient(t, r)
		tc.get("/set-token-mw?token=not-a-jwt")
		assert.Equal(t, "anonymous", tc.get("/whoami-mw").Body.String())
	})

	t.Run("CurrentUser - Foreign Secret", func(t *testing.T) {
		other, err := session.NewManager([]byte("some-other-secret"), time.Hour, time.Hour)
		require.NoError(t, err)
		token, _, err := other.Issue(1, false)
		require.NoError(t, err)

		tc := newTestClient(t, r)
		tc.get("/set-token-mw?token=" + token)
		assert.Equal(t, "anonymous", tc.get("/whoami-mw").Body.String())
	})

	t.Run("CurrentUser - Unknown User", func(t *testing.T) {
		token, _, err := h.sessions.Issue(9999, false)
		require.NoError(t, err)

		tc := newTestClient(t, r)
		tc.get("/set-token-mw?token=" + token)
		assert.Equal(t, "anonymous", tc.get("/whoami-mw").Body.String())
	})

	t.Run("CurrentUser - Tampered Cookie", func(t *testing.T) {
		tc := signedIn(t, r, "bob")
		c := tc.sessionCookie()
		require.NotNil(t, c)
		c.Value = strings.ToUpper(c.Value)
		assert.Equal(t, "anonymous", tc.get("/whoami-mw").Body.String())
	})

	t.Run("RequestID - Generated", func(t *testing.T) {
		w := newTestClient(t, r).get("/health")
		_, err := uuid.Parse(w.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("RequestID - Propagated", func(t *testing.T) {
		id := uuid.NewString()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get(requestIDHeader))
	})

	t.Run("RequestID - Garbage Replaced", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "<script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get(requestIDHeader))
	})

	t.Run("Recovery", func(t *testing.T) {
		w := newTestClient(t, r).get("/panic-mw")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), w.Header().Get(requestIDHeader))
	})

	t.Run("Metrics", func(t *testing.T) {
		before := testutil.ToFloat64(h.metrics.HTTPRequests.WithLabelValues("GET", "/health", "200"))
		newTestClient(t, r).get("/health")
		after := testutil.ToFloat64(h.metrics.HTTPRequests.WithLabelValues("GET", "/health", "200"))
		assert.Equal(t, before+1, after)
	})
}
