package router

import (
	"recipebox/internal/config"
	"recipebox/internal/handlers"
	"recipebox/internal/logging"
	"recipebox/internal/middleware"
	"recipebox/internal/services"
	"recipebox/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "recipebox_session"

// New builds the engine with its middleware stack, templates and routes.
func New(cfg *config.Config, conn *gorm.DB, log logging.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := newSessionStore(cfg, conn)
	store.Options(middleware.SessionOptions(middleware.SessionMaxAge))
	r.Use(sessions.Sessions(sessionName, store))

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	RegisterRoutes(r, cfg, conn, log)
	return r, nil
}

func newSessionStore(cfg *config.Config, conn *gorm.DB) sessions.Store {
	secret := []byte(cfg.SessionSecret)
	if cfg.SessionStore == config.SessionStoreCookie {
		return cookie.NewStore(secret)
	}
	return gormsessions.NewStore(conn, cfg.SessionCleanup, secret)
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, conn *gorm.DB, log logging.Logger) {
	// Services
	authService := services.NewAuthService(conn, log.With("component", "auth"))
	recipeService := services.NewRecipeService(conn, log.With("component", "recipes"))
	searchService := services.NewSearchService(conn)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	recipeHandler := handlers.NewRecipeHandler(recipeService, searchService, log)
	healthHandler := handlers.NewHealthHandler(conn, log)
	seoHandler := handlers.NewSEOHandler(recipeService, cfg.SiteURL, log)

	r.Use(middleware.LoadUser(authService, log))

	// Public Routes
	r.GET("/", recipeHandler.Index)
	r.GET("/search", recipeHandler.Search)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/logout", authHandler.Logout)
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/feed.xml", seoHandler.RSSFeed)

	guest := r.Group("/")
	guest.Use(middleware.GuestOnly())
	{
		guest.GET("/register", authHandler.ShowRegister)
		guest.POST("/register", authHandler.Register)
		guest.GET("/login", authHandler.ShowLogin)
		guest.POST("/login", authHandler.Login)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/recipe/new", recipeHandler.ShowCreate)
		authorized.POST("/recipe/new", recipeHandler.Create)
		authorized.GET("/recipe/:id", recipeHandler.Detail)
		authorized.POST("/recipe/:id", recipeHandler.Interact)

		authorized.GET("/account/password", authHandler.ShowChangePassword)
		authorized.POST("/account/password", authHandler.ChangePassword)
	}
}
