package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"innoportal/internal/models"
	"innoportal/internal/services"
)

type CommentHandler struct {
	discussion *services.DiscussionService
	log        zerolog.Logger
}

func NewCommentHandler(discussion *services.DiscussionService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{discussion: discussion, log: log}
}

// List handles GET /api/comments.
//
//	?approved=false                     moderation queue (admin)
//	?parentId=ID                        replies to one comment
//	?articleId|newsId|innovationId=ID   one content thread
//	(no filter)                         the general discussion board
//
// approved=false on a thread or reply list includes unapproved comments for moderators.
func (h *CommentHandler) List(c *gin.Context) {
	approved, err := boolQuery(c, "approved")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	includeUnapproved := approved != nil && !*approved
	target := services.CommentTarget{
		ArticleID:    optionalQuery(c, "articleId"),
		NewsID:       optionalQuery(c, "newsId"),
		InnovationID: optionalQuery(c, "innovationId"),
		ParentID:     optionalQuery(c, "parentId"),
	}
	ctx := c.Request.Context()
	actor := currentUser(c)

	var comments []models.Comment
	switch {
	case target.ParentID != nil:
		comments, err = h.discussion.ListReplies(ctx, actor, *target.ParentID, includeUnapproved)
	case target.ArticleID != nil || target.NewsID != nil || target.InnovationID != nil:
		comments, err = h.discussion.ListThread(ctx, actor, target, includeUnapproved)
	case includeUnapproved:
		comments, err = h.discussion.ListPending(ctx, actor)
	default:
		comments, err = h.discussion.ListGeneralDiscussion(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

// Discussions handles GET /api/discussions
func (h *CommentHandler) Discussions(c *gin.Context) {
	posts, err := h.discussion.ListGeneralDiscussion(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if posts == nil {
		posts = []models.Comment{}
	}
	c.JSON(http.StatusOK, posts)
}

type createCommentRequest struct {
	Content string `json:"content"`
	services.CommentTarget
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := h.discussion.PostComment(c.Request.Context(), currentUser(c).ID, req.Content, req.CommentTarget)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Approve(c *gin.Context) {
	comment, err := h.discussion.Approve(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Like(c *gin.Context) {
	if err := h.discussion.Like(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	deleted, err := h.discussion.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
