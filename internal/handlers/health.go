package handlers

import (
	"net/http"

	"recipebox/internal/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	log logging.Logger
}

func NewHealthHandler(db *gorm.DB, log logging.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// Healthz reports whether the database answers a ping.
func (h *HealthHandler) Healthz(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Error(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
