// Package config holds runtime settings for the recipebox server.
//
// Values are resolved in three layers: LoadDefaults, then environment variables
// (a .env file in the working directory is loaded first when present), then
// command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreDB     = "db"
	SessionStoreCookie = "cookie"
)

// Config holds runtime settings.
//
// Fields:
//   - Addr: listen address for the HTTP server.
//   - DatabaseDriver: "sqlite" or "postgres".
//   - DatabaseDSN: driver-specific connection string.
//   - SessionSecret: key used to authenticate session cookies.
//   - SessionStore: "db" keeps sessions in a table, "cookie" keeps them client side.
//   - SessionCleanup: run the periodic expired-session sweep (db store only).
//   - GinMode: gin.DebugMode, gin.ReleaseMode or gin.TestMode.
//   - LogLevel: debug, info, warn or error.
//   - SiteURL: public base URL used for absolute links in feeds and robots.txt.
type Config struct {
	Addr           string
	DatabaseDriver string
	DatabaseDSN    string
	SessionSecret  string
	SessionStore   string
	SessionCleanup bool
	GinMode        string
	LogLevel       string
	SiteURL        string
}

// LoadDefaults populates Config with development defaults.
// The session secret must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "recipebox.db"
	c.SessionSecret = "secret_key_change_me"
	c.SessionStore = SessionStoreDB
	c.SessionCleanup = true
	c.GinMode = "debug"
	c.LogLevel = "info"
	c.SiteURL = "http://localhost:8080"
}

// LoadEnv overlays values from environment variables. Unset variables keep the
// current value.
func (c *Config) LoadEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DatabaseDriver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		c.SessionStore = strings.ToLower(v)
	}
	if v := os.Getenv("SESSION_CLEANUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SessionCleanup = b
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.SiteURL = strings.TrimRight(v, "/")
	}
}

// parseFlags overlays values from args.
//
//	-a string       listen address (e.g. ":8080")
//	-driver string  database driver
//	-d string       database DSN
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("recipebox", flag.ContinueOnError)
	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver (sqlite, postgres)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	return fs.Parse(args)
}

// LoadConfig builds a Config from defaults, the optional .env file, the
// environment and finally args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.LoadEnv()
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
