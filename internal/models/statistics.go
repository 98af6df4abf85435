package models

import "time"

// StatisticsRowID is the primary key of the single statistics row.
const StatisticsRowID = 1

// Statistics is a denormalised snapshot, always recomputed from full counts.
type Statistics struct {
	ID               int       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	TotalArticles    int64     `gorm:"not null;default:0" json:"totalArticles"`
	TotalNews        int64     `gorm:"not null;default:0" json:"totalNews"`
	TotalInnovations int64     `gorm:"not null;default:0" json:"totalInnovations"`
	TotalUsers       int64     `gorm:"not null;default:0" json:"totalUsers"`
	TotalViews       int64     `gorm:"not null;default:0" json:"totalViews"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Statistics) TableName() string {
	return "statistics"
}
