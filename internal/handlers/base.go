package handlers

import (
	"net/http"

	"recipebox/internal/logging"
	"recipebox/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["Flashes"] = middleware.Flashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// serverError logs err with the request path and shows a generic 500 page.
func serverError(c *gin.Context, log logging.Logger, err error) {
	log.Error(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
