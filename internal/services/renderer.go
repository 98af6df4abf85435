package services

import (
	"time"

	"innoportal/internal/models"
	"innoportal/internal/utils"
)

// Renderer turns stored markdown into sanitised HTML. Results are cached by record id and
// update time, so an edit never serves stale HTML.
type Renderer struct {
	cache *utils.Cache[string]
}

func NewRenderer(size int, ttl time.Duration) (*Renderer, error) {
	cache, err := utils.NewCache[string](size, ttl)
	if err != nil {
		return nil, err
	}
	return &Renderer{cache: cache}, nil
}

func (r *Renderer) Render(c models.Content) string {
	key := c.CacheKey()
	if html, ok := r.cache.Get(key); ok {
		return html
	}
	html := utils.RenderMarkdown(c.MarkdownSource())
	r.cache.Set(key, html)
	return html
}
