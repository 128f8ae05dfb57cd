package middleware

import (
	"net/http"
	"net/url"

	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey  = "user"
	LoggerKey     = "logger"
	SessionUserID = "user_id"
)

// LoadUser resolves the session's user id and stores the user in the
// request context. A stale id (deleted user) is dropped from the session.
// It also restores the session lifetime chosen at login and makes log
// available to the session helpers.
func LoadUser(auth *services.AuthService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LoggerKey, log)

		session := sessions.Default(c)
		if maxAge, ok := session.Get(SessionMaxAgeKey).(int); ok {
			session.Options(SessionOptions(maxAge))
		}

		userID, ok := session.Get(SessionUserID).(uint)
		if ok {
			user, err := auth.GetUser(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else {
				session.Delete(SessionUserID)
				saveSession(c, session)
			}
		}
		c.Next()
	}
}

// Logger returns the request's logger, or a discarding one outside LoadUser.
func Logger(c *gin.Context) logging.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if log, ok := v.(logging.Logger); ok {
			return log
		}
	}
	return logging.Discard()
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// AuthRequired sends anonymous requests to the login page, remembering where
// they were headed.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GuestOnly keeps signed-in users away from the login and register pages.
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
