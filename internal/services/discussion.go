package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/metrics"
	"innoportal/internal/models"
	"innoportal/internal/policy"
	"innoportal/internal/utils"
)

const maxCommentRunes = 5000

// CommentTarget says where a comment goes. No content reference means the general
// discussion board.
type CommentTarget struct {
	ArticleID    *string `json:"articleId"`
	NewsID       *string `json:"newsId"`
	InnovationID *string `json:"innovationId"`
	ParentID     *string `json:"parentId"`
}

func (t CommentTarget) normalized() CommentTarget {
	return CommentTarget{
		ArticleID:    nilIfBlank(t.ArticleID),
		NewsID:       nilIfBlank(t.NewsID),
		InnovationID: nilIfBlank(t.InnovationID),
		ParentID:     nilIfBlank(t.ParentID),
	}
}

func (t CommentTarget) contentRefs() int {
	n := 0
	for _, ref := range []*string{t.ArticleID, t.NewsID, t.InnovationID} {
		if ref != nil {
			n++
		}
	}
	return n
}

// column returns the foreign key column and value of the single content reference.
func (t CommentTarget) column() (string, string) {
	switch {
	case t.ArticleID != nil:
		return "article_id", *t.ArticleID
	case t.NewsID != nil:
		return "news_id", *t.NewsID
	case t.InnovationID != nil:
		return "innovation_id", *t.InnovationID
	}
	return "", ""
}

func targetOf(c *models.Comment) CommentTarget {
	return CommentTarget{ArticleID: c.ArticleID, NewsID: c.NewsID, InnovationID: c.InnovationID}
}

type DiscussionService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewDiscussionService(conn *gorm.DB, log zerolog.Logger) *DiscussionService {
	return &DiscussionService{db: conn, log: log}
}

// PostComment creates a thread comment, a board post or a reply. A reply is linked to
// its parent only and may not be nested further. Approval follows the request's own
// content references: none means approved immediately, otherwise it waits for moderation.
func (s *DiscussionService) PostComment(ctx context.Context, authorID, content string, target CommentTarget) (*models.Comment, error) {
	target = target.normalized()
	if target.contentRefs() > 1 {
		return nil, apperr.Validation("a comment can reference at most one of articleId, newsId, innovationId")
	}
	body := utils.SanitizeText(content)
	if body == "" {
		return nil, apperr.Validation("content is required")
	}
	if utf8.RuneCountInString(body) > maxCommentRunes {
		return nil, apperr.Validation("content must be at most %d characters", maxCommentRunes)
	}

	tx := s.db.WithContext(ctx)
	var author models.User
	if err := tx.Select("id").First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrAuthRequired
		}
		return nil, apperr.FromDB(err)
	}

	if target.ParentID != nil {
		var parent models.Comment
		if err := tx.First(&parent, "id = ?", *target.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("parent comment")
			}
			return nil, apperr.FromDB(err)
		}
		if parent.ParentID != nil {
			return nil, apperr.Validation("replies can only be one level deep")
		}
		if target.contentRefs() > 0 {
			col, id := target.column()
			pcol, pid := targetOf(&parent).column()
			if col != pcol || id != pid {
				return nil, apperr.Validation("a reply must belong to the same thread as its parent")
			}
		}
	} else if target.contentRefs() == 1 {
		if _, err := loadTarget(tx, target); err != nil {
			return nil, err
		}
	}

	comment := &models.Comment{
		Content:      body,
		AuthorID:     authorID,
		ArticleID:    target.ArticleID,
		NewsID:       target.NewsID,
		InnovationID: target.InnovationID,
		ParentID:     target.ParentID,
	}
	comment.Approved = comment.IsDiscussion()

	if err := tx.Create(comment).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	metrics.ObserveCommentCreated(comment.Approved)
	return s.load(ctx, comment.ID)
}

// loadTarget fetches the content record behind the single content reference.
func loadTarget(tx *gorm.DB, target CommentTarget) (models.Content, error) {
	var record models.Content
	var name string
	switch {
	case target.ArticleID != nil:
		record, name = &models.Article{}, "article"
	case target.NewsID != nil:
		record, name = &models.NewsItem{}, "news"
	default:
		record, name = &models.Innovation{}, "innovation"
	}
	_, id := target.column()
	if err := tx.First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(name)
		}
		return nil, apperr.FromDB(err)
	}
	return record, nil
}

// Approve flips the approval flag. Admin only, idempotent.
func (s *DiscussionService) Approve(ctx context.Context, actor *models.User, id string) (*models.Comment, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanModerate(actor.Role) {
		return nil, apperr.Forbidden("approve comments")
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Approved {
		return comment, nil
	}
	if err := s.db.WithContext(ctx).Model(comment).Update("approved", true).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	comment.Approved = true
	return comment, nil
}

// Like adds one like. There is no per-user dedup.
func (s *DiscussionService) Like(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("comment")
	}
	metrics.Likes.WithLabelValues("comment").Inc()
	return nil
}

// ListThread returns the top-level comments of one content record, newest first.
// A draft's thread is hidden from callers who cannot see the draft itself. Unapproved
// comments are only included for moderators who ask for them.
func (s *DiscussionService) ListThread(ctx context.Context, actor *models.User, target CommentTarget, includeUnapproved bool) ([]models.Comment, error) {
	target = target.normalized()
	if target.contentRefs() != 1 {
		return nil, apperr.Validation("exactly one of articleId, newsId, innovationId is required")
	}
	tx := s.db.WithContext(ctx)
	record, err := loadTarget(tx, target)
	if err != nil {
		return nil, err
	}
	if !record.IsPublished() && !canSeeDraft(actor, record) {
		return nil, apperr.NotFound(string(record.Kind()))
	}
	col, id := target.column()
	q := tx.Preload("Author").
		Where(col+" = ?", id).
		Where("parent_id IS NULL")
	if !includeUnapproved || !canModerate(actor) {
		q = q.Where("approved = ?", true)
	}
	var comments []models.Comment
	if err := q.Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return comments, nil
}

// ListReplies returns the direct replies to parentID, oldest first.
func (s *DiscussionService) ListReplies(ctx context.Context, actor *models.User, parentID string, includeUnapproved bool) ([]models.Comment, error) {
	q := s.db.WithContext(ctx).Preload("Author").Where("parent_id = ?", parentID)
	if !includeUnapproved || !canModerate(actor) {
		q = q.Where("approved = ?", true)
	}
	var comments []models.Comment
	if err := q.Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return comments, nil
}

// ListGeneralDiscussion returns board posts newest first, each with its replies.
func (s *DiscussionService) ListGeneralDiscussion(ctx context.Context) ([]models.Comment, error) {
	var posts []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.Author").
		Where("article_id IS NULL AND news_id IS NULL AND innovation_id IS NULL AND parent_id IS NULL").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return posts, nil
}

// ListPending is the comment moderation queue.
func (s *DiscussionService) ListPending(ctx context.Context, actor *models.User) ([]models.Comment, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanModerate(actor.Role) {
		return nil, apperr.Forbidden("view moderation queue")
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("approved = ?", false).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return comments, nil
}

// Delete removes a comment and its replies. Moderators or the author only.
func (s *DiscussionService) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	if actor == nil {
		return false, apperr.ErrAuthRequired
	}
	tx := s.db.WithContext(ctx)
	var comment models.Comment
	if err := tx.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.FromDB(err)
	}
	if !policy.CanModerate(actor.Role) && actor.ID != comment.AuthorID {
		return false, apperr.Forbidden("delete comment")
	}
	res := tx.Where("id = ? OR parent_id = ?", id, id).Delete(&models.Comment{})
	if res.Error != nil {
		return false, apperr.FromDB(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DiscussionService) load(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment")
		}
		return nil, apperr.FromDB(err)
	}
	return &comment, nil
}

func canModerate(actor *models.User) bool {
	return actor != nil && policy.CanModerate(actor.Role)
}
