package handlers

import (
	"net/http"

	"shrtn/internal/apperror"
	"shrtn/internal/forms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ShowIndex(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) ShowCreateURL(c *gin.Context) {
	h.render(c, http.StatusOK, "create_url.html", gin.H{"Title": "Shorten"})
}

func (h *Handler) HandleAddLink(c *gin.Context) {
	var form forms.LinkForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.render(c, http.StatusBadRequest, "create_url.html", gin.H{
			"Title":       "Shorten",
			"OriginalURL": form.OriginalURL,
			"Errors":      errs,
		})
		return
	}

	user := currentUser(c)
	link, err := h.shortener.CreateLink(c.Request.Context(), user.ID, form.OriginalURL)
	if err != nil {
		if apperror.KindOf(err) == apperror.Validation {
			h.render(c, http.StatusBadRequest, "create_url.html", gin.H{
				"Title":       "Shorten",
				"OriginalURL": form.OriginalURL,
				"Errors":      forms.FieldErrors{"original_url": apperror.MessageOf(err)},
			})
			return
		}
		h.renderError(c, err)
		return
	}

	shortURL := h.baseURL(c) + "/" + link.ShortURL
	qrCode, err := h.qr.PNGDataURI(shortURL)
	if err != nil {
		h.logger.Warn("qr code generation failed", zap.String("request_id", requestID(c)), zap.Error(err))
	}

	h.render(c, http.StatusOK, "link_added.html", gin.H{
		"Title":    "Link created",
		"Link":     link,
		"ShortURL": shortURL,
		"QRCode":   qrCode,
	})
}
