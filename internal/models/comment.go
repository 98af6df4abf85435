package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment backs both content threads and the general discussion board. A comment with
// no article, news or innovation link is a discussion post (or a reply to one).
type Comment struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content      string      `gorm:"type:text;not null" json:"content"`
	AuthorID     string      `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Author       *User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	ArticleID    *string     `gorm:"type:varchar(36);index" json:"articleId"`
	Article      *Article    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	NewsID       *string     `gorm:"type:varchar(36);index" json:"newsId"`
	News         *NewsItem   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	InnovationID *string     `gorm:"type:varchar(36);index" json:"innovationId"`
	Innovation   *Innovation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID     *string     `gorm:"type:varchar(36);index" json:"parentId"` // nil for top-level
	Replies      []Comment   `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"replies,omitempty"`
	Likes        int64       `gorm:"default:0;not null" json:"likes"`
	Approved     bool        `gorm:"default:false;index" json:"approved"`
	CreatedAt    time.Time   `json:"createdAt"`
	// No UpdatedAt: comments are never edited, only approved or liked.
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// IsDiscussion reports whether the comment belongs to the general board.
func (c *Comment) IsDiscussion() bool {
	return c.ArticleID == nil && c.NewsID == nil && c.InnovationID == nil
}
