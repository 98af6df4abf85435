package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"innoportal/internal/config"
	"innoportal/internal/logger"
	"innoportal/internal/models"
)

// Init connects to PostgreSQL, migrates the schema and seeds default categories.
func Init(cfg config.AppConfig, log zerolog.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Gorm(log, cfg.AppEnv),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info().Msg("database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info().Msg("database migration completed")

	if err := SeedCategories(conn, log); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates every table. Order matters for foreign keys.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.EmailVerificationToken{},
		&models.Category{},
		&models.Article{},
		&models.NewsItem{},
		&models.Innovation{},
		&models.Comment{},
		&models.File{},
		&models.Statistics{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

var defaultCategories = []models.Category{
	{Name: "Texnologiya", Slug: "texnologiya"},
	{Name: "Biznes", Slug: "biznes"},
	{Name: "Ta'lim", Slug: "talim"},
	{Name: "Sog'liqni saqlash", Slug: "sogliqni-saqlash"},
	{Name: "Qishloq xo'jaligi", Slug: "qishloq-xojaligi"},
}

// SeedCategories inserts the default categories when the table is empty.
func SeedCategories(conn *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := conn.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		log.Debug().Msg("categories already seeded, skipping")
		return nil
	}

	for _, c := range defaultCategories {
		category := c
		if err := conn.Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", category.Slug, err)
		}
	}
	log.Info().Int("count", len(defaultCategories)).Msg("default categories created")
	return nil
}
