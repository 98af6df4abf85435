package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"innoportal/internal/config"
	"innoportal/internal/db"
	"innoportal/internal/logger"
	"innoportal/internal/metrics"
	"innoportal/internal/router"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg, warnings, err := config.Load()
	log := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if envErr != nil {
		log.Info().Msg("no .env file found, reading configuration from the environment")
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Init(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database initialisation failed")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("cannot create upload directory")
	}

	if cfg.MetricsEnabled {
		metrics.MustRegister(prometheus.DefaultRegisterer)
	}

	r, err := router.New(router.Options{Config: cfg, DB: conn, Log: log})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("innoportal server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
