package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/metrics"
	"innoportal/internal/models"
	"innoportal/internal/policy"
)

// ContentRecord lets ContentService allocate a T and use it through the Content methods
// implemented on *T.
type ContentRecord[T any] interface {
	*T
	models.Content
}

// ContentFilter narrows List. Empty strings mean no filter.
type ContentFilter struct {
	Published  *bool
	AuthorID   string
	CategoryID string
}

// ContentService implements the draft/published workflow for one content kind.
type ContentService[T any, P ContentRecord[T]] struct {
	db       *gorm.DB
	stats    *StatisticsService
	renderer *Renderer
	log      zerolog.Logger
	kind     models.ContentKind
}

func NewContentService[T any, P ContentRecord[T]](conn *gorm.DB, stats *StatisticsService, renderer *Renderer, log zerolog.Logger) *ContentService[T, P] {
	kind := P(new(T)).Kind()
	return &ContentService[T, P]{
		db:       conn,
		stats:    stats,
		renderer: renderer,
		log:      log.With().Str("kind", string(kind)).Logger(),
		kind:     kind,
	}
}

func (s *ContentService[T, P]) Kind() models.ContentKind {
	return s.kind
}

// Create stores a new record. Non-admin actors always get a draft, whatever they asked for.
func (s *ContentService[T, P]) Create(ctx context.Context, actor *models.User, in models.ContentInput) (P, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanCreateContent(actor.Role, s.kind) {
		return nil, apperr.Forbidden("create " + string(s.kind))
	}

	record := P(new(T))
	record.Apply(in)
	record.Normalize()
	if record.GetAuthorID() == "" {
		record.SetAuthorID(actor.ID)
	}
	if record.GetAuthorID() != actor.ID && !policy.IsStaff(actor.Role) {
		return nil, apperr.Forbidden("create content for another author")
	}
	if err := validateStruct(record); err != nil {
		return nil, err
	}
	record.SetPublished(policy.InitialPublished(actor.Role, in.Published))

	tx := s.db.WithContext(ctx)
	if err := s.checkReferences(tx, record); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(tx, record.GetSlug(), ""); err != nil {
		return nil, err
	}

	if err := tx.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("slug %q: %w", record.GetSlug(), apperr.ErrConflict)
		}
		return nil, apperr.FromDB(err)
	}
	metrics.ObserveContentCreated(string(s.kind), record.IsPublished())
	s.log.Info().Str("id", record.GetID()).Str("actor", actor.ID).Bool("published", record.IsPublished()).Msg("content created")

	s.stats.Refresh(ctx)
	return s.load(ctx, "id = ?", record.GetID())
}

// Publish makes a record public. Admin only; publishing twice is a no-op success.
func (s *ContentService[T, P]) Publish(ctx context.Context, actor *models.User, id string) (P, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanPublishDirectly(actor.Role) {
		return nil, apperr.Forbidden("publish " + string(s.kind))
	}

	record := P(new(T))
	if err := s.db.WithContext(ctx).First(record, "id = ?", id).Error; err != nil {
		return nil, s.notFound(err)
	}
	if err := s.markPublished(ctx, record); err != nil {
		return nil, err
	}
	return s.load(ctx, "id = ?", id)
}

func (s *ContentService[T, P]) markPublished(ctx context.Context, record P) error {
	wasPublished := record.IsPublished()
	err := s.db.WithContext(ctx).Model(record).Updates(map[string]any{
		"published":  true,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return apperr.FromDB(err)
	}
	if !wasPublished {
		metrics.ContentPublished.WithLabelValues(string(s.kind)).Inc()
		s.log.Info().Str("id", record.GetID()).Msg("content published")
	}
	return nil
}

// ListPending is the admin moderation queue, newest first.
func (s *ContentService[T, P]) ListPending(ctx context.Context, actor *models.User) ([]T, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanModerate(actor.Role) {
		return nil, apperr.Forbidden("view moderation queue")
	}
	var items []T
	err := s.db.WithContext(ctx).
		Preload("Author").Preload("Category").
		Where("published = ?", false).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return items, nil
}

// List returns records newest first. Callers that cannot see drafts get published records
// only, except when listing their own work.
func (s *ContentService[T, P]) List(ctx context.Context, actor *models.User, f ContentFilter) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T)).Preload("Author").Preload("Category")

	canSeeDrafts := actor != nil && policy.CanViewDrafts(actor.Role)
	ownWork := actor != nil && f.AuthorID != "" && f.AuthorID == actor.ID
	switch {
	case canSeeDrafts || ownWork:
		if f.Published != nil {
			q = q.Where("published = ?", *f.Published)
		}
	case f.Published != nil && !*f.Published:
		return nil, apperr.Forbidden("list drafts")
	default:
		q = q.Where("published = ?", true)
	}

	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}

	var items []T
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return items, nil
}

// Get returns one record with rendered HTML. Drafts are hidden (NotFound) from anyone who
// is neither staff nor the author.
func (s *ContentService[T, P]) Get(ctx context.Context, actor *models.User, id string) (P, error) {
	return s.getVisible(ctx, actor, "id = ?", id)
}

func (s *ContentService[T, P]) GetBySlug(ctx context.Context, actor *models.User, slug string) (P, error) {
	return s.getVisible(ctx, actor, "slug = ?", strings.ToLower(strings.TrimSpace(slug)))
}

func (s *ContentService[T, P]) getVisible(ctx context.Context, actor *models.User, query string, arg string) (P, error) {
	record, err := s.load(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	if !record.IsPublished() && !canSeeDraft(actor, record) {
		return nil, apperr.NotFound(string(s.kind))
	}
	record.SetContentHTML(s.renderer.Render(record))
	return record, nil
}

func canSeeDraft(actor *models.User, record models.Content) bool {
	if actor == nil {
		return false
	}
	return policy.CanViewDrafts(actor.Role) || actor.ID == record.GetAuthorID()
}

// Update applies a partial patch. published:true goes through the publish rule and there
// is no way back to draft.
func (s *ContentService[T, P]) Update(ctx context.Context, actor *models.User, id string, in models.ContentInput) (P, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	tx := s.db.WithContext(ctx)

	record := P(new(T))
	if err := tx.First(record, "id = ?", id).Error; err != nil {
		return nil, s.notFound(err)
	}
	if !policy.CanEditContent(actor.Role, actor.ID, record.GetAuthorID()) {
		return nil, apperr.Forbidden("edit " + string(s.kind))
	}

	publish := false
	if in.Published != nil {
		switch {
		case *in.Published && !record.IsPublished():
			if !policy.CanPublishDirectly(actor.Role) {
				return nil, apperr.Forbidden("publish " + string(s.kind))
			}
			publish = true
		case !*in.Published && record.IsPublished():
			return nil, apperr.Validation("published %s cannot be moved back to draft", s.kind)
		}
	}
	if in.AuthorID != nil && strings.TrimSpace(*in.AuthorID) != record.GetAuthorID() && !policy.IsStaff(actor.Role) {
		return nil, apperr.Forbidden("reassign author")
	}

	oldSlug := record.GetSlug()
	oldCategory := record.GetCategoryID()
	oldAuthor := record.GetAuthorID()
	record.Apply(in)
	record.Normalize()
	if err := validateStruct(record); err != nil {
		return nil, err
	}
	if record.GetSlug() != oldSlug {
		if err := s.checkSlugFree(tx, record.GetSlug(), id); err != nil {
			return nil, err
		}
	}
	if record.GetAuthorID() != oldAuthor || !sameRef(record.GetCategoryID(), oldCategory) {
		if err := s.checkReferences(tx, record); err != nil {
			return nil, err
		}
	}

	if publish {
		record.SetPublished(true)
	}
	record.SetUpdatedAt(time.Now())

	// Counters are never part of the column list, so concurrent likes or views are kept.
	cols := append(record.EditableColumns(), "published", "updated_at")
	if err := tx.Model(record).Select(cols).Updates(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("slug %q: %w", record.GetSlug(), apperr.ErrConflict)
		}
		return nil, apperr.FromDB(err)
	}
	if publish {
		metrics.ContentPublished.WithLabelValues(string(s.kind)).Inc()
		s.log.Info().Str("id", id).Msg("content published")
	}
	return s.load(ctx, "id = ?", id)
}

// Delete reports whether a record existed and was removed. Statistics are only recomputed
// for a real delete.
func (s *ContentService[T, P]) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	if actor == nil {
		return false, apperr.ErrAuthRequired
	}
	tx := s.db.WithContext(ctx)

	record := P(new(T))
	if err := tx.First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.FromDB(err)
	}
	if !policy.CanEditContent(actor.Role, actor.ID, record.GetAuthorID()) {
		return false, apperr.Forbidden("delete " + string(s.kind))
	}

	res := tx.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.log.Info().Str("id", id).Str("actor", actor.ID).Msg("content deleted")
	s.stats.Refresh(ctx)
	return true, nil
}

// increment bumps column by one in SQL so concurrent calls never lose updates.
func (s *ContentService[T, P]) increment(ctx context.Context, id, column string) (P, error) {
	res := s.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return nil, apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(string(s.kind))
	}
	return s.load(ctx, "id = ?", id)
}

func (s *ContentService[T, P]) load(ctx context.Context, query string, arg string) (P, error) {
	record := P(new(T))
	err := s.db.WithContext(ctx).Preload("Author").Preload("Category").First(record, query, arg).Error
	if err != nil {
		return nil, s.notFound(err)
	}
	return record, nil
}

func (s *ContentService[T, P]) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(string(s.kind))
	}
	return apperr.FromDB(err)
}

func (s *ContentService[T, P]) checkSlugFree(tx *gorm.DB, slug, exceptID string) error {
	q := tx.Model(new(T)).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return apperr.FromDB(err)
	}
	if n > 0 {
		return fmt.Errorf("slug %q: %w", slug, apperr.ErrConflict)
	}
	return nil
}

// checkReferences verifies the author and, when set, the category exist.
func (s *ContentService[T, P]) checkReferences(tx *gorm.DB, record P) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", record.GetAuthorID()).Count(&n).Error; err != nil {
		return apperr.FromDB(err)
	}
	if n == 0 {
		return apperr.Validation("authorId does not reference an existing user")
	}
	if cat := record.GetCategoryID(); cat != nil {
		if err := tx.Model(&models.Category{}).Where("id = ?", *cat).Count(&n).Error; err != nil {
			return apperr.FromDB(err)
		}
		if n == 0 {
			return apperr.Validation("categoryId does not reference an existing category")
		}
	}
	return nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ArticleService adds view counting to the generic workflow.
type ArticleService struct {
	*ContentService[models.Article, *models.Article]
}

func NewArticleService(conn *gorm.DB, stats *StatisticsService, renderer *Renderer, log zerolog.Logger) *ArticleService {
	return &ArticleService{NewContentService[models.Article](conn, stats, renderer, log)}
}

// IncrementViews adds one view and recomputes statistics, whose total includes views.
func (s *ArticleService) IncrementViews(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.increment(ctx, id, "views")
	if err != nil {
		return nil, err
	}
	s.stats.Refresh(ctx)
	return article, nil
}

type NewsService = ContentService[models.NewsItem, *models.NewsItem]

func NewNewsService(conn *gorm.DB, stats *StatisticsService, renderer *Renderer, log zerolog.Logger) *NewsService {
	return NewContentService[models.NewsItem](conn, stats, renderer, log)
}

// InnovationService adds likes to the generic workflow.
type InnovationService struct {
	*ContentService[models.Innovation, *models.Innovation]
}

func NewInnovationService(conn *gorm.DB, stats *StatisticsService, renderer *Renderer, log zerolog.Logger) *InnovationService {
	return &InnovationService{NewContentService[models.Innovation](conn, stats, renderer, log)}
}

// Like adds one like. Repeated calls by the same caller all count.
func (s *InnovationService) Like(ctx context.Context, id string) (*models.Innovation, error) {
	innovation, err := s.increment(ctx, id, "likes")
	if err != nil {
		return nil, err
	}
	metrics.Likes.WithLabelValues(string(models.KindInnovation)).Inc()
	return innovation, nil
}
