package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// NewsItem mirrors Article without excerpt, views and read time.
type NewsItem struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title" validate:"required,max=255"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required,slug,max=255"`
	Content    *string   `gorm:"type:text" json:"content"`
	Image      *string   `json:"image"`
	CategoryID *string   `gorm:"type:varchar(36);index" json:"categoryId"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	AuthorID   string    `gorm:"type:varchar(36);not null;index" json:"authorId" validate:"required"`
	Author     *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	Published  bool      `gorm:"default:false;index" json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}

func (NewsItem) TableName() string {
	return "news"
}

func (n *NewsItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

func (n *NewsItem) Kind() ContentKind           { return KindNews }
func (n *NewsItem) GetID() string               { return n.ID }
func (n *NewsItem) GetSlug() string             { return n.Slug }
func (n *NewsItem) GetAuthorID() string         { return n.AuthorID }
func (n *NewsItem) SetAuthorID(id string)       { n.AuthorID = id }
func (n *NewsItem) GetCategoryID() *string      { return n.CategoryID }
func (n *NewsItem) IsPublished() bool           { return n.Published }
func (n *NewsItem) SetPublished(published bool) { n.Published = published }
func (n *NewsItem) SetUpdatedAt(t time.Time)    { n.UpdatedAt = t }
func (n *NewsItem) CacheKey() string            { return cacheKey(KindNews, n.ID, n.UpdatedAt) }
func (n *NewsItem) SetContentHTML(html string)  { n.ContentHTML = html }

func (n *NewsItem) MarkdownSource() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

func (n *NewsItem) Apply(in ContentInput) {
	setString(&n.Title, in.Title)
	setString(&n.Slug, in.Slug)
	setString(&n.AuthorID, in.AuthorID)
	setOptional(&n.Content, in.Content)
	setOptional(&n.Image, in.Image)
	setOptional(&n.CategoryID, in.CategoryID)
}

func (n *NewsItem) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Slug = strings.ToLower(strings.TrimSpace(n.Slug))
	n.AuthorID = strings.TrimSpace(n.AuthorID)
	n.Image = optionalRef(n.Image)
	n.CategoryID = optionalRef(n.CategoryID)
	if n.Content != nil && strings.TrimSpace(*n.Content) == "" {
		n.Content = nil
	}
}

func (n *NewsItem) EditableColumns() []string {
	return []string{"title", "slug", "content", "image", "category_id", "author_id"}
}
