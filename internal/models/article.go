package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Article struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title" validate:"required,max=255"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required,slug,max=255"`
	Excerpt    string    `gorm:"type:text;not null" json:"excerpt" validate:"required"`
	Content    string    `gorm:"type:text;not null" json:"content" validate:"required"`
	Image      *string   `json:"image"`
	CategoryID *string   `gorm:"type:varchar(36);index" json:"categoryId"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	AuthorID   string    `gorm:"type:varchar(36);not null;index" json:"authorId" validate:"required"`
	Author     *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	Views      int64     `gorm:"default:0;not null" json:"views"` // only ever incremented
	ReadTime   string    `gorm:"size:50" json:"readTime"`
	Published  bool      `gorm:"default:false;index" json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Rendered on single-record reads, never stored.
	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *Article) Kind() ContentKind            { return KindArticle }
func (a *Article) GetID() string                { return a.ID }
func (a *Article) GetSlug() string              { return a.Slug }
func (a *Article) GetAuthorID() string          { return a.AuthorID }
func (a *Article) SetAuthorID(id string)        { a.AuthorID = id }
func (a *Article) GetCategoryID() *string       { return a.CategoryID }
func (a *Article) IsPublished() bool            { return a.Published }
func (a *Article) SetPublished(published bool)  { a.Published = published }
func (a *Article) SetUpdatedAt(t time.Time)     { a.UpdatedAt = t }
func (a *Article) CacheKey() string             { return cacheKey(KindArticle, a.ID, a.UpdatedAt) }
func (a *Article) MarkdownSource() string       { return a.Content }
func (a *Article) SetContentHTML(html string)   { a.ContentHTML = html }

func (a *Article) Apply(in ContentInput) {
	setString(&a.Title, in.Title)
	setString(&a.Slug, in.Slug)
	setString(&a.Excerpt, in.Excerpt)
	setString(&a.Content, in.Content)
	setString(&a.ReadTime, in.ReadTime)
	setString(&a.AuthorID, in.AuthorID)
	setOptional(&a.Image, in.Image)
	setOptional(&a.CategoryID, in.CategoryID)
}

func (a *Article) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = strings.ToLower(strings.TrimSpace(a.Slug))
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	a.ReadTime = strings.TrimSpace(a.ReadTime)
	a.AuthorID = strings.TrimSpace(a.AuthorID)
	a.Image = optionalRef(a.Image)
	a.CategoryID = optionalRef(a.CategoryID)
}

func (a *Article) EditableColumns() []string {
	return []string{"title", "slug", "excerpt", "content", "image", "category_id", "author_id", "read_time"}
}
