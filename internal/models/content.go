package models

import (
	"strings"
	"time"
)

// ContentKind names one of the publishable record types.
type ContentKind string

const (
	KindArticle    ContentKind = "article"
	KindNews       ContentKind = "news"
	KindInnovation ContentKind = "innovation"
)

// Content is implemented by articles, news items and innovations. All three share the
// draft/published lifecycle and the same author and category links.
type Content interface {
	Kind() ContentKind
	GetID() string
	GetSlug() string
	GetAuthorID() string
	SetAuthorID(id string)
	GetCategoryID() *string
	IsPublished() bool
	SetPublished(published bool)
	SetUpdatedAt(t time.Time)
	CacheKey() string
	MarkdownSource() string
	SetContentHTML(html string)
	// Apply copies the fields of in that the kind understands. Nil fields are left alone.
	Apply(in ContentInput)
	// Normalize trims text and turns empty optional references into nil.
	Normalize()
	// EditableColumns lists the columns a partial update may write.
	EditableColumns() []string
}

// ContentInput is the writable surface shared by all content kinds. Fields a kind does
// not carry (excerpt on news, say) are ignored by that kind.
type ContentInput struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Excerpt     *string `json:"excerpt"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Image       *string `json:"image"`
	CategoryID  *string `json:"categoryId"`
	AuthorID    *string `json:"authorId"`
	ReadTime    *string `json:"readTime"`
	Published   *bool   `json:"published"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// optionalRef coerces empty or blank values to nil.
func optionalRef(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cacheKey(kind ContentKind, id string, updatedAt time.Time) string {
	return string(kind) + ":" + id + ":" + updatedAt.UTC().Format(time.RFC3339Nano)
}
