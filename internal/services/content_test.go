package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/dbtest"
	"innoportal/internal/models"
)

type fixture struct {
	db          *gorm.DB
	stats       *StatisticsService
	articles    *ArticleService
	news        *NewsService
	innovations *InnovationService
	discussion  *DiscussionService
	users       *UserService

	admin, editor, assistant, member *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	log := zerolog.Nop()
	renderer, err := NewRenderer(16, time.Minute)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	stats := NewStatisticsService(conn, log)
	return &fixture{
		db:          conn,
		stats:       stats,
		articles:    NewArticleService(conn, stats, renderer, log),
		news:        NewNewsService(conn, stats, renderer, log),
		innovations: NewInnovationService(conn, stats, renderer, log),
		discussion:  NewDiscussionService(conn, log),
		users:       NewUserService(conn, stats, nil, log),
		admin:       dbtest.CreateUser(t, conn, "admin@example.uz", models.RoleAdmin),
		editor:      dbtest.CreateUser(t, conn, "editor@example.uz", models.RoleEditorAdmin),
		assistant:   dbtest.CreateUser(t, conn, "assistant@example.uz", models.RoleAssistant),
		member:      dbtest.CreateUser(t, conn, "member@example.uz", models.RoleUser),
	}
}

func ptr[T any](v T) *T { return &v }

func articleInput(slug string, published bool) models.ContentInput {
	return models.ContentInput{
		Title:     ptr("Sun'iy intellekt"),
		Slug:      ptr(slug),
		Excerpt:   ptr("Qisqacha"),
		Content:   ptr("# Sarlavha\n\nMatn **qalin**."),
		ReadTime:  ptr("5 daqiqa"),
		Published: ptr(published),
	}
}

func TestCreateForcesDraftForNonAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []*models.User{f.editor, f.assistant} {
		a, err := f.articles.Create(ctx, actor, articleInput("draft-"+string(actor.Role), true))
		if err != nil {
			t.Fatalf("create as %s: %v", actor.Role, err)
		}
		if a.Published {
			t.Errorf("%s created a published article", actor.Role)
		}
		if a.AuthorID != actor.ID {
			t.Errorf("author = %s, want %s", a.AuthorID, actor.ID)
		}
	}

	a, err := f.articles.Create(ctx, f.admin, articleInput("admin-post", true))
	if err != nil {
		t.Fatalf("create as admin: %v", err)
	}
	if !a.Published {
		t.Error("admin request for published:true was ignored")
	}
}

func TestCreateRejectsRegularUsersExceptInnovations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.articles.Create(ctx, f.member, articleInput("nope", false))
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("member article err = %v, want forbidden", err)
	}

	inv, err := f.innovations.Create(ctx, f.member, models.ContentInput{
		Title:       ptr("Quyosh paneli"),
		Slug:        ptr("quyosh-paneli"),
		Description: ptr("Arzon quyosh paneli"),
		Published:   ptr(true),
	})
	if err != nil {
		t.Fatalf("member innovation: %v", err)
	}
	if inv.Published {
		t.Error("member innovation should start as draft")
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.ContentInput
		want error
	}{
		{"missing title", models.ContentInput{Slug: ptr("a"), Excerpt: ptr("e"), Content: ptr("c")}, apperr.ErrValidation},
		{"bad slug", articleInput("Not A Slug!", false), apperr.ErrValidation},
		{"unknown category", func() models.ContentInput {
			in := articleInput("with-category", false)
			in.CategoryID = ptr("00000000-0000-0000-0000-000000000000")
			return in
		}(), apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.articles.Create(ctx, f.admin, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.articles.Create(ctx, f.admin, articleInput("taken", false)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := f.articles.Create(ctx, f.admin, articleInput("taken", false)); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate slug err = %v, want conflict", err)
	}
}

func TestGetBySlugRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.articles.Create(ctx, f.admin, articleInput("round-trip", true))
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.articles.GetBySlug(ctx, nil, "Round-Trip")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != created.ID || got.Title != created.Title || got.Views != 0 {
		t.Errorf("got %+v", got)
	}
	if got.ContentHTML == "" {
		t.Error("rendered HTML missing")
	}
	if got.Author == nil || got.Author.ID != f.admin.ID {
		t.Error("author not preloaded")
	}
}

func TestDraftVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.articles.Create(ctx, f.editor, articleInput("hidden", false))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.articles.Get(ctx, nil, draft.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("anonymous err = %v, want not found", err)
	}
	if _, err := f.articles.Get(ctx, f.member, draft.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("member err = %v, want not found", err)
	}
	for _, actor := range []*models.User{f.editor, f.assistant, f.admin} {
		if _, err := f.articles.Get(ctx, actor, draft.ID); err != nil {
			t.Errorf("%s cannot see draft: %v", actor.Role, err)
		}
	}

	public, err := f.articles.List(ctx, nil, ContentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(public) != 0 {
		t.Errorf("anonymous list returned %d drafts", len(public))
	}
	if _, err := f.articles.List(ctx, f.member, ContentFilter{Published: ptr(false)}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member draft list err = %v, want forbidden", err)
	}
	drafts, err := f.articles.List(ctx, f.assistant, ContentFilter{Published: ptr(false)})
	if err != nil || len(drafts) != 1 {
		t.Errorf("assistant drafts = %d, %v", len(drafts), err)
	}
}

func TestPublishWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.articles.Create(ctx, f.editor, articleInput("pending", true))
	if err != nil {
		t.Fatal(err)
	}

	pending, err := f.articles.ListPending(ctx, f.admin)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %d, %v", len(pending), err)
	}
	if _, err := f.articles.ListPending(ctx, f.editor); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("editor queue err = %v, want forbidden", err)
	}

	if _, err := f.articles.Publish(ctx, f.editor, draft.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("editor publish err = %v, want forbidden", err)
	}
	if _, err := f.articles.Update(ctx, f.editor, draft.ID, models.ContentInput{Published: ptr(true)}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("editor patch publish err = %v, want forbidden", err)
	}

	published, err := f.articles.Publish(ctx, f.admin, draft.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.Published {
		t.Fatal("not published")
	}
	again, err := f.articles.Publish(ctx, f.admin, draft.ID)
	if err != nil || !again.Published {
		t.Errorf("second publish = %v, %v", again, err)
	}

	if _, err := f.articles.Update(ctx, f.admin, draft.ID, models.ContentInput{Published: ptr(false)}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unpublish err = %v, want validation", err)
	}
	if _, err := f.articles.Publish(ctx, f.admin, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("publish missing err = %v, want not found", err)
	}
}

func TestUpdateKeepsCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.articles.Create(ctx, f.editor, articleInput("counted", false))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.articles.IncrementViews(ctx, a.ID); err != nil {
			t.Fatal(err)
		}
	}

	updated, err := f.articles.Update(ctx, f.editor, a.ID, models.ContentInput{Title: ptr("Yangi sarlavha")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Yangi sarlavha" || updated.Excerpt != "Qisqacha" {
		t.Errorf("patch not partial: %+v", updated)
	}
	if updated.Views != 3 {
		t.Errorf("views = %d, want 3", updated.Views)
	}
	if updated.Published {
		t.Error("update published a draft")
	}

	if _, err := f.articles.Update(ctx, f.member, a.ID, models.ContentInput{Title: ptr("x")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member update err = %v, want forbidden", err)
	}
}

func TestIncrementViewsConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.articles.Create(ctx, f.admin, articleInput("popular", true))
	if err != nil {
		t.Fatal(err)
	}
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.articles.IncrementViews(ctx, a.ID); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := f.articles.Get(ctx, nil, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != n {
		t.Errorf("views = %d, want %d", got.Views, n)
	}
	if _, err := f.articles.IncrementViews(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v, want not found", err)
	}
}

func TestInnovationLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.innovations.Create(ctx, f.admin, models.ContentInput{
		Title:       ptr("Suv tozalagich"),
		Slug:        ptr("suv-tozalagich"),
		Description: ptr("Qishloqlar uchun"),
		Published:   ptr(true),
	})
	if err != nil {
		t.Fatal(err)
	}
	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.innovations.Like(ctx, inv.ID); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	got, err := f.innovations.Get(ctx, nil, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Likes != n {
		t.Errorf("likes = %d, want %d", got.Likes, n)
	}
	if got.ContentHTML == "" {
		t.Error("description should render when content is empty")
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deleted, err := f.news.Delete(ctx, f.admin, "does-not-exist")
	if err != nil || deleted {
		t.Errorf("delete missing = %v, %v", deleted, err)
	}

	item, err := f.news.Create(ctx, f.assistant, models.ContentInput{
		Title:   ptr("Yangilik"),
		Slug:    ptr("yangilik"),
		Content: ptr("Matn"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.news.Delete(ctx, f.member, item.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member delete err = %v, want forbidden", err)
	}
	deleted, err = f.news.Delete(ctx, f.assistant, item.ID)
	if err != nil || !deleted {
		t.Fatalf("author delete = %v, %v", deleted, err)
	}
	if _, err := f.news.Get(ctx, f.admin, item.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var cat models.Category
	if err := f.db.Create(&models.Category{Name: "Texnologiya", Slug: "texnologiya"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := f.db.First(&cat, "slug = ?", "texnologiya").Error; err != nil {
		t.Fatal(err)
	}

	in := articleInput("in-category", true)
	in.CategoryID = &cat.ID
	if _, err := f.articles.Create(ctx, f.admin, in); err != nil {
		t.Fatal(err)
	}
	if _, err := f.articles.Create(ctx, f.admin, articleInput("no-category", true)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.articles.Create(ctx, f.editor, articleInput("editor-draft", false)); err != nil {
		t.Fatal(err)
	}

	byCategory, err := f.articles.List(ctx, nil, ContentFilter{CategoryID: cat.ID})
	if err != nil || len(byCategory) != 1 || byCategory[0].Slug != "in-category" {
		t.Errorf("category filter = %v, %v", byCategory, err)
	}
	own, err := f.articles.List(ctx, f.editor, ContentFilter{AuthorID: f.editor.ID, Published: ptr(false)})
	if err != nil || len(own) != 1 {
		t.Errorf("own drafts = %d, %v", len(own), err)
	}
	all, err := f.articles.List(ctx, f.admin, ContentFilter{})
	if err != nil || len(all) != 3 {
		t.Errorf("admin list = %d, %v", len(all), err)
	}
}
