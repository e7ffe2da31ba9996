package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RedirectToURL(c *gin.Context) {
	target, err := h.shortener.Resolve(c.Request.Context(), c.Param("alias"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
