package admin_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T) (*admin.Service, *store.DocStore) {
	t.Helper()
	log := logger.New("error", false)
	st := store.New(store.NewMemoryBackend(), log)
	return admin.NewService(st, log, admin.WithIDGenerator(sequentialIDs())), st
}

func TestCreatePage(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	page, err := svc.CreatePage(ctx, admin.PageInput{
		Title:    "  Deploying to Production ",
		Category: "guides",
		Tags:     []string{" ops", "ops", "", "deploy "},
		Content:  "<p>ship it</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", page.ID)
	assert.Equal(t, "Deploying to Production", page.Title)
	assert.Equal(t, "deploying-to-production", page.Slug)
	assert.Equal(t, []string{"ops", "deploy"}, page.Tags)
	assert.False(t, page.CreatedAt.IsZero())

	state, err := st.Load(ctx)
	require.NoError(t, err)
	_, ok := state.PageBySlug("deploying-to-production")
	assert.True(t, ok)
}

func TestCreatePage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   admin.PageInput
		wantErr error
	}{
		{name: "missing title", input: admin.PageInput{Title: "   "}, wantErr: admin.ErrInvalidInput},
		{name: "malformed slug", input: admin.PageInput{Title: "Ok", Slug: "Not A Slug"}, wantErr: admin.ErrInvalidInput},
		{name: "title without slug characters", input: admin.PageInput{Title: "???"}, wantErr: admin.ErrInvalidInput},
		{name: "unknown category", input: admin.PageInput{Title: "Ok", Category: "nope"}, wantErr: admin.ErrUnknownCategory},
		{name: "slug taken", input: admin.PageInput{Title: "Getting Started"}, wantErr: domain.ErrDuplicateSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, err := svc.CreatePage(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdatePage_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.CreatePage(ctx, admin.PageInput{Title: "Intro"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	updated, err := svc.UpdatePage(ctx, created.ID, admin.PageInput{Title: "Introduction", Slug: "intro"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Introduction", updated.Title)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdatePage_UnknownIDCreates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	page, err := svc.UpdatePage(ctx, "custom", admin.PageInput{Title: "Custom"})
	require.NoError(t, err)

	got, err := svc.GetPage(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, page.Slug, got.Slug)
}

func TestUpdatePage_RequiresID(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdatePage(context.Background(), " ", admin.PageInput{Title: "x"})
	assert.ErrorIs(t, err, admin.ErrInvalidInput)
}

func TestUpdate_TrimsID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	page, err := svc.UpdatePage(ctx, "  padded\t", admin.PageInput{Title: "Padded"})
	require.NoError(t, err)
	assert.Equal(t, "padded", page.ID)
	_, err = svc.GetPage(ctx, "padded")
	require.NoError(t, err)

	c, err := svc.UpdateCategory(ctx, " faq ", admin.CategoryInput{Name: "FAQ"})
	require.NoError(t, err)
	assert.Equal(t, "faq", c.ID)
	_, err = svc.GetCategory(ctx, "faq")
	require.NoError(t, err)
}

// racingStore deletes a category right before each page write starts, the
// way a concurrent admin request would.
type racingStore struct {
	*store.DocStore
	categoryID string
}

func (r racingStore) UpsertPageChecked(ctx context.Context, page domain.Page, check store.PageCheck) (domain.Page, error) {
	if err := r.DocStore.DeleteCategory(ctx, r.categoryID); err != nil {
		return domain.Page{}, err
	}
	return r.DocStore.UpsertPageChecked(ctx, page, check)
}

func TestCreatePage_CategoryDeletedConcurrently(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	st := store.New(store.NewMemoryBackend(), log)

	state, err := st.Load(ctx)
	require.NoError(t, err)
	guides, ok := state.CategoryBySlug("guides")
	require.True(t, ok)

	svc := admin.NewService(racingStore{DocStore: st, categoryID: guides.ID}, log,
		admin.WithIDGenerator(sequentialIDs()))
	_, err = svc.CreatePage(ctx, admin.PageInput{Title: "Late", Category: "guides"})
	assert.ErrorIs(t, err, admin.ErrUnknownCategory)

	state, err = st.Load(ctx)
	require.NoError(t, err)
	_, ok = state.PageBySlug("late")
	assert.False(t, ok, "page must not be written under a deleted category")
}

func TestGetAndDeletePage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	page, err := svc.GetPage(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "getting-started", page.Slug)

	require.NoError(t, svc.DeletePage(ctx, "1"))
	require.NoError(t, svc.DeletePage(ctx, "1"), "delete is idempotent")

	_, err = svc.GetPage(ctx, "1")
	assert.ErrorIs(t, err, admin.ErrNotFound)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	c, err := svc.CreateCategory(ctx, admin.CategoryInput{Name: "Frequently Asked"})
	require.NoError(t, err)
	assert.Equal(t, "frequently-asked", c.Slug)

	_, err = svc.CreatePage(ctx, admin.PageInput{Title: "Why", Category: c.Slug})
	require.NoError(t, err, "pages can be filed under a new category")

	renamed, err := svc.UpdateCategory(ctx, c.ID, admin.CategoryInput{Name: "FAQ", Slug: c.Slug})
	require.NoError(t, err)
	assert.True(t, renamed.CreatedAt.Equal(c.CreatedAt))

	got, err := svc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAQ", got.Name)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	_, err = svc.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, admin.ErrNotFound)

	state, err := st.Load(ctx)
	require.NoError(t, err)
	orphans := domain.UncategorizedPages(state.Categories, state.Pages)
	require.Len(t, orphans, 1)
	assert.Equal(t, "why", orphans[0].Slug)
}

func TestCategory_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateCategory(ctx, admin.CategoryInput{Name: ""})
	assert.ErrorIs(t, err, admin.ErrInvalidInput)

	_, err = svc.CreateCategory(ctx, admin.CategoryInput{Name: "Guides"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	_, err = svc.UpdateCategory(ctx, "", admin.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, admin.ErrInvalidInput)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	exported, err := svc.ExportState(ctx)
	require.NoError(t, err)
	require.Len(t, exported.Pages, 1)

	exported.Pages = append(exported.Pages, domain.Page{ID: "2", Title: "Second", Slug: "second"})
	require.NoError(t, svc.ImportState(ctx, exported))

	reloaded, err := svc.ExportState(ctx)
	require.NoError(t, err)
	assert.Len(t, reloaded.Pages, 2)
	assert.Equal(t, []string{}, reloaded.Pages[1].Tags)
}

func TestImportState_RejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	bad := domain.AppState{Pages: []domain.Page{
		{ID: "1", Slug: "same"},
		{ID: "2", Slug: "same"},
	}}
	err := svc.ImportState(ctx, bad)
	assert.ErrorIs(t, err, admin.ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	state, err := svc.ExportState(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Pages, 1, "rejected import must not touch the stored document")
}
