package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shrtn/internal/config"
	"shrtn/internal/metrics"
	"shrtn/internal/models"
	"shrtn/internal/repository"
	"shrtn/internal/services"
	"shrtn/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-12345678901234567890123456789012"

func setupTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.AutoMigrate(context.Background(), db))

	cfg := config.Config{
		SessionSecret:    testSecret,
		SessionTTL:       time.Hour,
		RememberTTL:      30 * 24 * time.Hour,
		AliasMaxAttempts: 10,
	}

	log := zap.NewNop()
	m := metrics.New()
	store := repository.NewStore(db)
	shortener := services.NewShortenerService(store, services.NewLinkCache(nil, 0, log), m, log, cfg.AliasMaxAttempts)
	accounts := services.NewAccountService(store, m, log)
	manager, err := session.NewManager([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.RememberTTL)
	require.NoError(t, err)

	h := NewHandler(cfg, log, store, shortener, accounts, manager, services.NewQRService(), m)
	return h, db
}

func setupTestRouter(t *testing.T, h *Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := h.SetupRouter()
	require.NoError(t, err)
	return r
}

// testClient plays a browser: it carries cookies between requests and
// never follows redirects.
type testClient struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, r *gin.Engine) *testClient {
	return &testClient{t: t, r: r, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(tc.t, err)
	return tc.do(req)
}

func (tc *testClient) post(path string, form url.Values) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	require.NoError(tc.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	req.Host = "localhost"
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(tc.cookies, c.Name)
			continue
		}
		tc.cookies[c.Name] = c
	}
	return w
}

func (tc *testClient) sessionCookie() *http.Cookie {
	return tc.cookies[sessionCookieName]
}

func registerForm(name string) url.Values {
	return url.Values{
		"email":          {name + "@x.com"},
		"password":       {"pw1"},
		"password_again": {"pw1"},
		"name":           {name},
		"about":          {"hi"},
	}
}

func (tc *testClient) register(name string) {
	tc.t.Helper()
	w := tc.post("/register", registerForm(name))
	require.Equal(tc.t, http.StatusFound, w.Code, w.Body.String())
}

func (tc *testClient) login(name string, remember bool) {
	tc.t.Helper()
	form := url.Values{"email": {name + "@x.com"}, "password": {"pw1"}}
	if remember {
		form.Set("remember_me", "true")
	}
	w := tc.post("/login", form)
	require.Equal(tc.t, http.StatusFound, w.Code, w.Body.String())
	require.Equal(tc.t, "/", w.Header().Get("Location"))
}

// signedIn returns a client with a fresh account called name.
func signedIn(t *testing.T, r *gin.Engine, name string) *testClient {
	t.Helper()
	tc := newTestClient(t, r)
	tc.register(name)
	tc.login(name, false)
	return tc
}

func (tc *testClient) addLink(originalURL string) *httptest.ResponseRecorder {
	return tc.post("/add_link", url.Values{"original_url": {originalURL}})
}

func linksOf(t *testing.T, store *repository.Store, name string) []models.Link {
	t.Helper()
	ctx := context.Background()
	user, err := store.Users.FindByName(ctx, name)
	require.NoError(t, err)
	links, err := store.Links.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	return links
}
