package web

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	pages := []string{
		"index.html", "create_url.html", "link_added.html", "stats.html",
		"register.html", "login.html", "404.html", "500.html", "503.html",
	}
	for _, page := range pages {
		t.Run(page, func(t *testing.T) {
			assert.NotNil(t, tmpl.Lookup(page))
		})
	}
}

func TestDateFunc(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	check, err := tmpl.New("date_check").Parse(`{{date .}}`)
	require.NoError(t, err)
	require.NoError(t, check.Execute(&buf, date))
	assert.Equal(t, "2024-03-01 09:30", buf.String())
}

func TestStatic(t *testing.T) {
	f, err := Static().Open("style.css")
	require.NoError(t, err)
	defer f.Close()

	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
