package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShowStats lists the signed-in user's links, oldest first.
func (h *Handler) ShowStats(c *gin.Context) {
	user := currentUser(c)

	links, err := h.shortener.ListLinks(c.Request.Context(), user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	totalVisits := 0
	for _, link := range links {
		totalVisits += link.Visits
	}

	h.render(c, http.StatusOK, "stats.html", gin.H{
		"Title":       "My links",
		"Links":       links,
		"TotalLinks":  len(links),
		"TotalVisits": totalVisits,
		"BaseURL":     h.baseURL(c),
	})
}
