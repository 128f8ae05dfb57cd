package main

import (
	"context"
	"os"

	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/logging"
	"recipebox/internal/router"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		logging.New(os.Stderr, "error").Error(ctx, "failed to load config", "error", err)
		os.Exit(2)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	conn, err := db.Open(cfg)
	if err != nil {
		log.Error(ctx, "failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}

	r, err := router.New(cfg, conn, log)
	if err != nil {
		log.Error(ctx, "failed to build router", "error", err)
		os.Exit(1)
	}

	log.Info(ctx, "recipebox server starting", "addr", cfg.Addr, "driver", cfg.DatabaseDriver)
	if err := r.Run(cfg.Addr); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
