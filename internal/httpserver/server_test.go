package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/httpserver"
	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	handler http.Handler
	store   *store.DocStore
	backend *store.MemoryBackend
}

type fixtureOption func(*deps.Deps)

func withEditMode() fixtureOption {
	return func(d *deps.Deps) { d.EditMode = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) fixture {
	t.Helper()
	log := logger.New("error", false)
	backend := store.NewMemoryBackend()
	st := store.New(backend, log)

	n := 0
	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Version:         "test",
		TimeNow:         time.Now,
		Store:           st,
		Backend:         st.BackendName(),
		Admin:           admin.NewService(st, log, admin.WithIDGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) })),
		AdminRateBurst:  100,
		AdminRatePerMin: 600,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return fixture{
		handler: httpserver.NewRouter(time.Second, log, d),
		store:   st,
		backend: backend,
	}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:41000"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestConfigReportsEditMode(t *testing.T) {
	tests := []struct {
		name string
		opts []fixtureOption
		want bool
	}{
		{name: "read-only", want: false},
		{name: "edit", opts: []fixtureOption{withEditMode()}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFixture(t, tt.opts...).do(t, http.MethodGet, "/api/config", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decode[map[string]bool](t, rec)["editMode"])
		})
	}
}

func TestListPages(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/pages", 1},
		{"/api/pages?category=guides", 1},
		{"/api/pages?category=api-reference", 0},
		{"/api/pages?tag=setup", 1},
		{"/api/pages?tag=setup&category=api-reference", 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decode[[]domain.Page](t, rec), tt.want)
		})
	}
}

func TestPageBySlug(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/pages/getting-started", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page](t, rec)
	assert.Equal(t, "Getting Started", page.Title)
	assert.Equal(t, []string{"beginner", "setup"}, page.Tags)

	rec = f.do(t, http.MethodGet, "/api/pages/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]domain.CategorySummary](t, rec)
	require.Len(t, summaries, 2)
	assert.Equal(t, "guides", summaries[0].Slug)
	assert.Equal(t, 1, summaries[0].PageCount)
	assert.Equal(t, 0, summaries[1].PageCount)

	rec = f.do(t, http.MethodGet, "/api/categories/guides/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Page](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/categories/api-reference/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/categories/nope/pages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSidebarShowsUncategorizedAfterCategoryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(t, http.MethodGet, "/api/sidebar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.SidebarGroup](t, rec), 2)

	require.NoError(t, f.store.DeleteCategory(ctx, "1"))

	rec = f.do(t, http.MethodGet, "/api/sidebar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]domain.SidebarGroup](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, "api-reference", groups[0].Slug)
	assert.Equal(t, domain.UncategorizedName, groups[1].Name)
	assert.Nil(t, groups[1].Category)
	require.Len(t, groups[1].Pages, 1)
	assert.Equal(t, "getting-started", groups[1].Pages[0].Slug)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	overview := decode[domain.Overview](t, rec)
	assert.Equal(t, 1, overview.TotalPages)
	assert.Equal(t, 2, overview.TotalCategories)
	assert.Equal(t, 0, overview.Uncategorized)
	assert.Len(t, overview.RecentPages, 1)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/search?q=getting", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]domain.PageCandidate](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "getting-started", results[0].Page.Slug)
	assert.Greater(t, results[0].Score, 0.0)

	rec = f.do(t, http.MethodGet, "/api/search?q=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.PageCandidate](t, rec))

	rec = f.do(t, http.MethodGet, "/api/search?q=kubernetes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.PageCandidate](t, rec))
}

func TestAdminRoutesAbsentOutsideEditMode(t *testing.T) {
	f := newFixture(t)

	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/api/admin/pages"},
		{http.MethodGet, "/api/admin/pages/1"},
		{http.MethodDelete, "/api/admin/categories/1"},
		{http.MethodGet, "/api/admin/state"},
	} {
		rec := f.do(t, req.method, req.path, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", req.method, req.path)
	}

	state, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Pages, 1)
	assert.Len(t, state.Categories, 2)
}

func TestAdminPageLifecycle(t *testing.T) {
	f := newFixture(t, withEditMode())

	rec := f.do(t, http.MethodPost, "/api/admin/pages", admin.PageInput{
		Title:    "Authentication",
		Category: "api-reference",
		Tags:     []string{"auth"},
		Content:  "<p>tokens</p>",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Page](t, rec)
	assert.Equal(t, "gen-1", created.ID)
	assert.Equal(t, "authentication", created.Slug)

	rec = f.do(t, http.MethodGet, "/api/pages/authentication", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/admin/pages/gen-1", admin.PageInput{
		Title:    "Authentication",
		Slug:     "auth",
		Category: "api-reference",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Page](t, rec)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.Empty(t, updated.Tags)

	rec = f.do(t, http.MethodGet, "/api/admin/pages/gen-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth", decode[domain.Page](t, rec).Slug)

	rec = f.do(t, http.MethodDelete, "/api/admin/pages/gen-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/admin/pages/gen-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, "delete is idempotent")

	rec = f.do(t, http.MethodGet, "/api/admin/pages/gen-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPageErrors(t *testing.T) {
	f := newFixture(t, withEditMode())

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "malformed json", body: `{"title":`, want: http.StatusBadRequest},
		{name: "missing title", body: admin.PageInput{}, want: http.StatusBadRequest},
		{name: "unknown category", body: admin.PageInput{Title: "x", Category: "nope"}, want: http.StatusUnprocessableEntity},
		{name: "duplicate slug", body: admin.PageInput{Title: "Getting Started"}, want: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/admin/pages", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestAdminEditRoundTrip(t *testing.T) {
	f := newFixture(t, withEditMode())

	rec := f.do(t, http.MethodGet, "/api/admin/pages/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := rec.Body.String()

	rec = f.do(t, http.MethodPut, "/api/admin/pages/1", fetched)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[domain.Page](t, rec)
	assert.Equal(t, "getting-started", page.Slug)
	assert.Equal(t, "guides", page.Category)

	rec = f.do(t, http.MethodGet, "/api/admin/categories/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPut, "/api/admin/categories/1", rec.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "guides", decode[domain.Category](t, rec).Slug)

	rec = f.do(t, http.MethodPost, "/api/admin/pages", `{"title":"Extra","author":"me"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "extra", decode[domain.Page](t, rec).Slug)
}

func TestAdminImportState_Decoding(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      int
		wantPages int
	}{
		{name: "unknown fields ignored", body: `{"pages":[],"categories":[],"version":1}`, want: http.StatusNoContent},
		{name: "nested unknown fields ignored", body: `{"pages":[{"id":"9","title":"N","slug":"n","draft":true}],"categories":[]}`, want: http.StatusNoContent, wantPages: 1},
		{name: "null document", body: `null`, want: http.StatusBadRequest, wantPages: 1},
		{name: "truncated", body: `{"pages":[`, want: http.StatusBadRequest, wantPages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, withEditMode())
			rec := f.do(t, http.MethodPut, "/api/admin/state", tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())

			state, err := f.store.Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, state.Pages, tt.wantPages)
		})
	}
}

func TestAdminCategoryLifecycle(t *testing.T) {
	f := newFixture(t, withEditMode())

	rec := f.do(t, http.MethodPost, "/api/admin/categories", admin.CategoryInput{Name: "Tutorials"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[domain.Category](t, rec)
	assert.Equal(t, "tutorials", c.Slug)

	rec = f.do(t, http.MethodPut, "/api/admin/categories/"+c.ID, admin.CategoryInput{Name: "Tutorials", Slug: "tutorials", Description: "Hands-on"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/categories/"+c.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hands-on", decode[domain.Category](t, rec).Description)

	rec = f.do(t, http.MethodPost, "/api/admin/categories", admin.CategoryInput{Name: "Guides"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/admin/categories/"+c.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/categories/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminStateExportImport(t *testing.T) {
	f := newFixture(t, withEditMode())

	rec := f.do(t, http.MethodGet, "/api/admin/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[domain.AppState](t, rec)
	require.Len(t, state.Pages, 1)

	state.Pages = append(state.Pages, domain.Page{ID: "2", Title: "Second", Slug: "second", Category: "guides"})
	rec = f.do(t, http.MethodPut, "/api/admin/state", state)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/categories/guides/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Page](t, rec), 2)

	state.Pages = append(state.Pages, domain.Page{ID: "3", Slug: "second"})
	rec = f.do(t, http.MethodPut, "/api/admin/state", state)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRateLimit(t *testing.T) {
	f := newFixture(t, withEditMode(), func(d *deps.Deps) {
		d.AdminRateBurst = 2
		d.AdminRatePerMin = 1
	})

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodGet, "/api/admin/state", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/admin/state", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = f.do(t, http.MethodGet, "/api/pages", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "public routes are not rate limited")
}

func TestAdminRestrictedByCIDR(t *testing.T) {
	f := newFixture(t, withEditMode(), func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	rec := f.do(t, http.MethodGet, "/api/admin/state", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/pages", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCorruptStateIsSurfaced(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.backend.Write(context.Background(), []byte("{not json")))

	rec := f.do(t, http.MethodGet, "/api/pages", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "corrupt")

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, http.MethodGet, "/infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "critical", decode[map[string]any](t, rec)["status"])
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyzAndInfra(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ready"])

	rec = f.do(t, http.MethodGet, "/infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	degraded := newFixture(t, func(d *deps.Deps) { d.Pinger = failingPinger{} })
	rec = degraded.do(t, http.MethodGet, "/infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, rec)["status"])
}
