package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"innoportal/internal/models"
	"innoportal/internal/services"
)

// ContentHandler serves the JSON API of one content kind.
type ContentHandler[T any, P services.ContentRecord[T]] struct {
	svc *services.ContentService[T, P]
	log zerolog.Logger
}

func NewContentHandler[T any, P services.ContentRecord[T]](svc *services.ContentService[T, P], log zerolog.Logger) *ContentHandler[T, P] {
	return &ContentHandler[T, P]{svc: svc, log: log}
}

// List handles GET /api/{kind}?published=&authorId=&categoryId=
func (h *ContentHandler[T, P]) List(c *gin.Context) {
	published, err := boolQuery(c, "published")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), currentUser(c), services.ContentFilter{
		Published:  published,
		AuthorID:   c.Query("authorId"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ContentHandler[T, P]) Pending(c *gin.Context) {
	items, err := h.svc.ListPending(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ContentHandler[T, P]) Get(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ContentHandler[T, P]) GetBySlug(c *gin.Context) {
	record, err := h.svc.GetBySlug(c.Request.Context(), currentUser(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ContentHandler[T, P]) Create(c *gin.Context) {
	var in models.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	record, err := h.svc.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update handles PATCH /api/{kind}/:id, including {"published": true}.
func (h *ContentHandler[T, P]) Update(c *gin.Context) {
	var in models.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	record, err := h.svc.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ContentHandler[T, P]) Publish(c *gin.Context) {
	record, err := h.svc.Publish(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ContentHandler[T, P]) Delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": string(h.svc.Kind()) + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Register mounts the routes on g. Reads are public; writes need auth.
func (h *ContentHandler[T, P]) Register(g *gin.RouterGroup, authRequired gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/slug/:slug", h.GetBySlug)
	g.GET("/:id", h.Get)
	g.GET("/pending", authRequired, h.Pending)
	g.POST("", authRequired, h.Create)
	g.PATCH("/:id", authRequired, h.Update)
	g.PATCH("/:id/publish", authRequired, h.Publish)
	g.DELETE("/:id", authRequired, h.Delete)
}

type ArticleHandler struct {
	*ContentHandler[models.Article, *models.Article]
	articles *services.ArticleService
}

func NewArticleHandler(articles *services.ArticleService, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		ContentHandler: NewContentHandler(articles.ContentService, log),
		articles:       articles,
	}
}

// View handles POST /api/articles/:id/view
func (h *ArticleHandler) View(c *gin.Context) {
	article, err := h.articles.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type InnovationHandler struct {
	*ContentHandler[models.Innovation, *models.Innovation]
	innovations *services.InnovationService
}

func NewInnovationHandler(innovations *services.InnovationService, log zerolog.Logger) *InnovationHandler {
	return &InnovationHandler{
		ContentHandler: NewContentHandler(innovations.ContentService, log),
		innovations:    innovations,
	}
}

// Like handles POST /api/innovations/:id/like
func (h *InnovationHandler) Like(c *gin.Context) {
	innovation, err := h.innovations.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, innovation)
}
