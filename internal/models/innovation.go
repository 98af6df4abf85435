package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Innovation is an idea listing. Likes are incremented in SQL, never rewritten.
type Innovation struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title" validate:"required,max=255"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required,slug,max=255"`
	Description string    `gorm:"type:text;not null" json:"description" validate:"required"`
	Content     *string   `gorm:"type:text" json:"content"`
	Image       *string   `json:"image"`
	CategoryID  *string   `gorm:"type:varchar(36);index" json:"categoryId"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	AuthorID    string    `gorm:"type:varchar(36);not null;index" json:"authorId" validate:"required"`
	Author      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	Likes       int64     `gorm:"default:0;not null" json:"likes"`
	Published   bool      `gorm:"default:false;index" json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}

func (i *Innovation) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func (i *Innovation) Kind() ContentKind           { return KindInnovation }
func (i *Innovation) GetID() string               { return i.ID }
func (i *Innovation) GetSlug() string             { return i.Slug }
func (i *Innovation) GetAuthorID() string         { return i.AuthorID }
func (i *Innovation) SetAuthorID(id string)       { i.AuthorID = id }
func (i *Innovation) GetCategoryID() *string      { return i.CategoryID }
func (i *Innovation) IsPublished() bool           { return i.Published }
func (i *Innovation) SetPublished(published bool) { i.Published = published }
func (i *Innovation) SetUpdatedAt(t time.Time)    { i.UpdatedAt = t }
func (i *Innovation) CacheKey() string            { return cacheKey(KindInnovation, i.ID, i.UpdatedAt) }
func (i *Innovation) SetContentHTML(html string)  { i.ContentHTML = html }

// MarkdownSource falls back to the description when no long-form body exists.
func (i *Innovation) MarkdownSource() string {
	if i.Content == nil {
		return i.Description
	}
	return *i.Content
}

func (i *Innovation) Apply(in ContentInput) {
	setString(&i.Title, in.Title)
	setString(&i.Slug, in.Slug)
	setString(&i.Description, in.Description)
	setString(&i.AuthorID, in.AuthorID)
	setOptional(&i.Content, in.Content)
	setOptional(&i.Image, in.Image)
	setOptional(&i.CategoryID, in.CategoryID)
}

func (i *Innovation) Normalize() {
	i.Title = strings.TrimSpace(i.Title)
	i.Slug = strings.ToLower(strings.TrimSpace(i.Slug))
	i.Description = strings.TrimSpace(i.Description)
	i.AuthorID = strings.TrimSpace(i.AuthorID)
	i.Image = optionalRef(i.Image)
	i.CategoryID = optionalRef(i.CategoryID)
	if i.Content != nil && strings.TrimSpace(*i.Content) == "" {
		i.Content = nil
	}
}

func (i *Innovation) EditableColumns() []string {
	return []string{"title", "slug", "description", "content", "image", "category_id", "author_id"}
}
