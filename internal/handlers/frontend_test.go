package handlers

import (
	"net/http"
	"strings"
	"testing"

	"shrtn/internal/models"
	"shrtn/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontendHandlers(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(t, h)

	t.Run("Show Index Anonymous", func(t *testing.T) {
		w := newTestClient(t, r).get("/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `href="/login"`)
	})

	t.Run("Create URL Requires Login", func(t *testing.T) {
		w := newTestClient(t, r).get("/create_url")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	tc := signedIn(t, r, "alice")

	t.Run("Show Create URL", func(t *testing.T) {
		w := tc.get("/create_url")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="original_url"`)
	})

	t.Run("Add Link Success", func(t *testing.T) {
		w := tc.addLink("https://example.com/page")
		require.Equal(t, http.StatusOK, w.Code)

		links := linksOf(t, h.store, "alice")
		require.Len(t, links, 1)
		alias := links[0].ShortURL
		assert.True(t, utils.IsShortCode(alias, models.AliasLength))

		body := w.Body.String()
		assert.Contains(t, body, "http://"+"localhost/"+alias)
		assert.Contains(t, body, "https://example.com/page")
		assert.Contains(t, body, `<img src="data:image/png;base64,`)
		assert.NotContains(t, body, "ZgotmplZ")
	})

	t.Run("Add Link Uses Base URL", func(t *testing.T) {
		h.cfg.BaseURL = "https://sho.rt/"
		defer func() { h.cfg.BaseURL = "" }()

		w := tc.addLink("https://example.com/base")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://sho.rt/")
	})

	t.Run("Add Link Empty", func(t *testing.T) {
		w := tc.addLink("")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "this field is required")
	})

	t.Run("Add Link Blank", func(t *testing.T) {
		w := tc.addLink("   ")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "original url is required")
	})

	t.Run("Add Link Too Long", func(t *testing.T) {
		w := tc.addLink("https://" + strings.Repeat("a", 600))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be at most 512 characters")
	})

	t.Run("Add Link Alias Exhausted", func(t *testing.T) {
		owner := linksOf(t, h.store, "alice")[0]
		h.shortener.SetCodeGenerator(func(int) string { return owner.ShortURL })
		defer h.shortener.SetCodeGenerator(utils.GenerateShortCode)

		before := len(linksOf(t, h.store, "alice"))
		w := tc.addLink("https://example.com/full")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Temporarily unavailable")
		assert.Len(t, linksOf(t, h.store, "alice"), before)
	})

	t.Run("Add Link Requires Login", func(t *testing.T) {
		w := newTestClient(t, r).addLink("https://example.com")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("Same URL Gets New Alias", func(t *testing.T) {
		before := len(linksOf(t, h.store, "alice"))
		require.Equal(t, http.StatusOK, tc.addLink("https://example.com/page").Code)
		links := linksOf(t, h.store, "alice")
		require.Len(t, links, before+1)

		seen := map[string]bool{}
		for _, l := range links {
			assert.False(t, seen[l.ShortURL], "alias %s issued twice", l.ShortURL)
			seen[l.ShortURL] = true
		}
	})
}
