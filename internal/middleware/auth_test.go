package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *models.User) {
	t.Helper()
	conn, err := db.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    ":memory:",
		GinMode:        "test",
	})
	require.NoError(t, err)

	auth := services.NewAuthService(conn, logging.Discard())
	user, err := auth.Register(context.Background(), "cook", "cook@example.com", "password")
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser(auth, logging.Discard()))

	r.GET("/login-as", func(c *gin.Context) {
		require.NoError(t, Login(c, user, c.Query("remember") == "1"))
		c.String(http.StatusOK, "ok")
	})
	r.GET("/logout", func(c *gin.Context) {
		require.NoError(t, Logout(c))
		c.String(http.StatusOK, "bye")
	})
	r.GET("/whoami", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	r.GET("/guest", GuestOnly(), func(c *gin.Context) {
		c.String(http.StatusOK, "welcome")
	})
	r.GET("/flash", func(c *gin.Context) {
		Flash(c, "hello")
		c.String(http.StatusOK, "queued")
	})
	r.GET("/flashes", func(c *gin.Context) {
		c.JSON(http.StatusOK, Flashes(c))
	})
	r.GET("/has-logger", func(c *gin.Context) {
		_, ok := c.Get(LoggerKey)
		c.String(http.StatusOK, "%t", ok)
	})
	return r, user
}

func do(r http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_RedirectsAnonymous(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, "/private?x=1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fprivate%3Fx%3D1", w.Header().Get("Location"))
}

func TestLogin_ThenLogout(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, "/login-as", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	assert.Equal(t, "cook", do(r, "/whoami", cookies).Body.String())
	assert.Equal(t, "secret", do(r, "/private", cookies).Body.String())

	guest := do(r, "/guest", cookies)
	assert.Equal(t, http.StatusFound, guest.Code)
	assert.Equal(t, "/", guest.Header().Get("Location"))

	w = do(r, "/logout", cookies)
	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Less(t, cleared[0].MaxAge, 0)

	assert.Equal(t, "anonymous", do(r, "/whoami", cleared).Body.String())
	assert.Equal(t, http.StatusFound, do(r, "/private", cleared).Code)
}

func TestLogin_RememberSetsMaxAge(t *testing.T) {
	r, _ := setupRouter(t)

	plain := do(r, "/login-as", nil).Result().Cookies()
	require.NotEmpty(t, plain)
	assert.Equal(t, SessionMaxAge, plain[0].MaxAge)

	remembered := do(r, "/login-as?remember=1", nil).Result().Cookies()
	require.NotEmpty(t, remembered)
	assert.Equal(t, RememberMaxAge, remembered[0].MaxAge)
}

func TestGuestOnly_AllowsAnonymous(t *testing.T) {
	r, _ := setupRouter(t)
	assert.Equal(t, "welcome", do(r, "/guest", nil).Body.String())
}

func TestFlashes_AreOneShot(t *testing.T) {
	r, _ := setupRouter(t)

	cookies := do(r, "/flash", nil).Result().Cookies()
	w := do(r, "/flashes", cookies)
	assert.JSONEq(t, `["hello"]`, w.Body.String())

	next := w.Result().Cookies()
	require.NotEmpty(t, next)
	assert.JSONEq(t, `null`, do(r, "/flashes", next).Body.String())
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" {
			return ck
		}
	}
	require.FailNow(t, "no session cookie in response")
	return nil
}

func TestLogin_LifetimeSurvivesLaterSaves(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		query  string
		maxAge int
	}{
		{"/login-as?remember=1", RememberMaxAge},
		{"/login-as", SessionMaxAge},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			login := sessionCookie(t, do(r, tc.query, nil))
			require.Equal(t, tc.maxAge, login.MaxAge)

			flashed := sessionCookie(t, do(r, "/flash", []*http.Cookie{login}))
			assert.Equal(t, tc.maxAge, flashed.MaxAge)

			popped := sessionCookie(t, do(r, "/flashes", []*http.Cookie{flashed}))
			assert.Equal(t, tc.maxAge, popped.MaxAge)
		})
	}
}

func TestLogger(t *testing.T) {
	r, _ := setupRouter(t)
	assert.Equal(t, "true", do(r, "/has-logger", nil).Body.String())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, Logger(c))
}

func TestFlash_LogsSaveFailure(t *testing.T) {
	conn, err := db.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    ":memory:",
		GinMode:        "test",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser(services.NewAuthService(conn, logging.Discard()), logging.New(&buf, "info")))
	r.GET("/big-flash", func(c *gin.Context) {
		// Larger than a cookie can hold, so the store refuses to encode it.
		Flash(c, strings.Repeat("x", 8192))
		c.String(http.StatusOK, "queued")
	})

	w := do(r, "/big-flash", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to save session")
	assert.Contains(t, buf.String(), "path=/big-flash")
}
