package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/services"
)

type StatisticsHandler struct {
	stats *services.StatisticsService
	db    *gorm.DB
	log   zerolog.Logger
}

func NewStatisticsHandler(stats *services.StatisticsService, conn *gorm.DB, log zerolog.Logger) *StatisticsHandler {
	return &StatisticsHandler{stats: stats, db: conn, log: log}
}

func (h *StatisticsHandler) Get(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health reports liveness and whether the database answers.
func (h *StatisticsHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
