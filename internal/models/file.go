package models

import (
	"time"

	"gorm.io/gorm"
)

// File is an uploaded asset stored on local disk, optionally tied to one content record.
type File struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Filename     string      `gorm:"not null" json:"filename"` // stored name, <uuid><ext>
	OriginalName string      `gorm:"not null" json:"originalName"`
	Description  *string     `gorm:"type:text" json:"description"`
	Path         string      `gorm:"not null" json:"path"`
	MimeType     string      `gorm:"size:255" json:"mimeType"`
	Size         int64       `json:"size"`
	UploadedBy   string      `gorm:"type:varchar(36);not null;index" json:"uploadedBy"`
	Uploader     *User       `gorm:"foreignKey:UploadedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ArticleID    *string     `gorm:"type:varchar(36);index" json:"articleId"`
	Article      *Article    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	NewsID       *string     `gorm:"type:varchar(36);index" json:"newsId"`
	News         *NewsItem   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	InnovationID *string     `gorm:"type:varchar(36);index" json:"innovationId"`
	Innovation   *Innovation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
