package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"innoportal/internal/apperr"
	"innoportal/internal/metrics"
	"innoportal/internal/models"
)

// StatisticsService maintains the single denormalised statistics row.
type StatisticsService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewStatisticsService(conn *gorm.DB, log zerolog.Logger) *StatisticsService {
	return &StatisticsService{db: conn, log: log}
}

// Recompute counts everything from scratch and upserts row 1 in one transaction.
func (s *StatisticsService) Recompute(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats = models.Statistics{ID: models.StatisticsRowID, UpdatedAt: time.Now()}
		if err := tx.Model(&models.Article{}).Count(&stats.TotalArticles).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.NewsItem{}).Count(&stats.TotalNews).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Innovation{}).Count(&stats.TotalInnovations).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Article{}).
			Select("CAST(COALESCE(SUM(views), 0) AS BIGINT)").
			Scan(&stats.TotalViews).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_articles", "total_news", "total_innovations", "total_users", "total_views", "updated_at",
			}),
		}).Create(&stats).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return &stats, nil
}

// Get returns the current row, computing it the first time.
func (s *StatisticsService) Get(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	err := s.db.WithContext(ctx).First(&stats, "id = ?", models.StatisticsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Recompute(ctx)
	}
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return &stats, nil
}

// Refresh recomputes after a mutation. Failures are logged and counted, never returned.
func (s *StatisticsService) Refresh(ctx context.Context) {
	if _, err := s.Recompute(ctx); err != nil {
		metrics.StatisticsRecomputeFailures.Inc()
		s.log.Error().Err(err).Msg("statistics recompute failed")
	}
}
