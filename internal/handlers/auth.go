package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"recipebox/internal/logging"
	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/gin-gonic/gin"
)

const loginFailed = "Login Unsuccessful. Please check email and password"

type AuthHandler struct {
	auth *services.AuthService
	log  logging.Logger
}

func NewAuthHandler(auth *services.AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "register.html", gin.H{"Form": registerForm{}, "Errors": noErrors()})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if errs := bindForm(c, &form, "username"); errs != nil {
		form.Password, form.ConfirmPassword = "", ""
		Render(c, http.StatusBadRequest, "register.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	_, err := h.auth.Register(c.Request.Context(), form.Username, form.Email, form.Password)
	if err != nil {
		form.Password, form.ConfirmPassword = "", ""
		errs := noErrors()
		code := http.StatusBadRequest

		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			errs["username"] = "That username is taken. Please choose a different one."
			code = http.StatusConflict
		case errors.Is(err, services.ErrDuplicateEmail):
			errs["email"] = "That email is taken. Please choose a different one."
			code = http.StatusConflict
		default:
			fields, ok := serviceFieldErrors(err)
			if !ok {
				serverError(c, h.log, err)
				return
			}
			errs = fields
		}
		Render(c, code, "register.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	middleware.Flash(c, "Your account has been created! You are now able to log in")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "login.html", gin.H{
		"Form":   loginForm{},
		"Errors": noErrors(),
		"Next":   c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form loginForm
	if errs := bindForm(c, &form, "email"); errs != nil {
		form.Password = ""
		Render(c, http.StatusBadRequest, "login.html", gin.H{"Form": form, "Errors": errs, "Next": next})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			serverError(c, h.log, err)
			return
		}
		form.Password = ""
		middleware.Flash(c, loginFailed)
		Render(c, http.StatusUnauthorized, "login.html", gin.H{"Form": form, "Errors": noErrors(), "Next": next})
		return
	}

	if err := middleware.Login(c, user, form.Remember != ""); err != nil {
		serverError(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		h.log.Warn(c.Request.Context(), "failed to clear session", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowChangePassword(c *gin.Context) {
	Render(c, http.StatusOK, "change_password.html", gin.H{"Errors": noErrors()})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form passwordForm
	if errs := bindForm(c, &form, "new_password"); errs != nil {
		Render(c, http.StatusBadRequest, "change_password.html", gin.H{"Errors": errs})
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), user.ID, form.CurrentPassword, form.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			Render(c, http.StatusBadRequest, "change_password.html", gin.H{
				"Errors": map[string]string{"current_password": "Current password is incorrect."},
			})
			return
		}
		if fields, ok := serviceFieldErrors(err); ok {
			Render(c, http.StatusBadRequest, "change_password.html", gin.H{"Errors": fields})
			return
		}
		serverError(c, h.log, err)
		return
	}

	middleware.Flash(c, "Your password has been updated.")
	c.Redirect(http.StatusFound, "/")
}

// safeNext returns next when it is a path on this site, "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
