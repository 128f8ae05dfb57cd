package middleware

import (
	"net/http"

	"recipebox/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session lifetimes in seconds. The database store expires its rows after
// MaxAge, so even short sessions need a positive value.
const (
	SessionMaxAge  = 24 * 60 * 60
	RememberMaxAge = 30 * 24 * 60 * 60

	// SessionMaxAgeKey keeps the lifetime picked at login so later saves
	// do not fall back to the store default.
	SessionMaxAgeKey = "max_age"
)

// SessionOptions are the cookie options for a session of the given lifetime.
func SessionOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login binds user to the current session. Remembered logins last thirty
// days, others one day.
func Login(c *gin.Context, user *models.User, remember bool) error {
	session := sessions.Default(c)
	session.Clear()
	maxAge := SessionMaxAge
	if remember {
		maxAge = RememberMaxAge
	}
	session.Options(SessionOptions(maxAge))
	session.Set(SessionUserID, user.ID)
	session.Set(SessionMaxAgeKey, maxAge)
	return session.Save()
}

// Logout clears the session and expires its cookie.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// Flash queues a one-shot message for the next rendered page.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	saveSession(c, session)
}

// Flashes pops the queued messages.
func Flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	saveSession(c, session)

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func saveSession(c *gin.Context, session sessions.Session) {
	if err := session.Save(); err != nil {
		Logger(c).Warn(c.Request.Context(), "failed to save session",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
}
