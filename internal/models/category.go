package models

import (
	"time"

	"gorm.io/gorm"
)

// Category has no update path; rename means delete and recreate.
type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name" validate:"required,max=100"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required,slug,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
