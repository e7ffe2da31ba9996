package handlers

import (
	"net/http"
	"time"

	"shrtn/internal/apperror"
	"shrtn/internal/forms"
	"shrtn/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ShowLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": forms.LoginForm{}})
}

func (h *Handler) ShowRegister(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": forms.RegisterForm{}})
}

func (h *Handler) HandleLoginForm(c *gin.Context) {
	var form forms.LoginForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{"Title": "Log in", "Form": form, "Errors": errs})
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if apperror.KindOf(err) == apperror.Authentication {
			h.render(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title": "Log in",
				"Form":  forms.LoginForm{},
				"Error": apperror.MessageOf(err),
			})
			return
		}
		h.renderError(c, err)
		return
	}

	token, _, err := h.sessions.Issue(user.ID, form.RememberMe)
	if err != nil {
		h.renderError(c, err)
		return
	}

	maxAge := time.Duration(0)
	if form.RememberMe {
		maxAge = h.cfg.RememberTTL
	}

	// Set Session
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionTokenKey, token)
	session.Set(sessionRememberKey, form.RememberMe)
	session.Set(sessionRefreshedKey, time.Now().Unix())
	session.Options(h.sessionOptions(maxAge))
	if err := session.Save(); err != nil {
		h.renderError(c, err)
		return
	}

	h.logger.Info("user logged in", zap.Uint("user_id", user.ID), zap.Bool("remember", form.RememberMe))
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) HandleRegisterForm(c *gin.Context) {
	var form forms.RegisterForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.render(c, http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Form": form, "Errors": errs})
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:         form.Email,
		Password:      form.Password,
		PasswordAgain: form.PasswordAgain,
		Name:          form.Name,
		About:         form.About,
	})
	if err != nil {
		switch kind := apperror.KindOf(err); kind {
		case apperror.Validation, apperror.Conflict:
			h.render(c, kind.StatusCode(), "register.html", gin.H{
				"Title": "Register",
				"Form":  form,
				"Error": apperror.MessageOf(err),
			})
		default:
			h.renderError(c, err)
		}
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(h.sessionOptions(-time.Second))
	if err := session.Save(); err != nil {
		h.logger.Warn("session clear failed", zap.String("request_id", requestID(c)), zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}
