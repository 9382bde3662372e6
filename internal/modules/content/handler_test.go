package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-studio/core/internal/models"
	"github.com/atelier-studio/core/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doc := store.NewDocumentStore(t.TempDir(), "studio", zap.NewNop())
	repo, err := store.NewRepository(store.ModeJSON, nil, doc, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	NewHandler(repo, nil, zap.NewNop()).Register(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPageRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/api/v1/studio/pages/about",
		`{"title":"About Us","status":"published"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studio/pages/about", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.PageModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, "about", page.Slug)
	require.Equal(t, "About Us", page.Title)
}

func TestGetMissingPageReturns404(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/studio/pages/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/api/v1/studio/pages/about", `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListArticlesDefaultsToPublished(t *testing.T) {
	r := newTestRouter(t)

	published := time.Now().UTC().Format(time.RFC3339)
	w := do(t, r, http.MethodPut, "/api/v1/studio/articles/live",
		`{"title":"Live","status":"published","publishedAt":"`+published+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/studio/articles/draft",
		`{"title":"Draft"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studio/articles", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items      []models.ArticleModel `json:"items"`
		NextCursor *string               `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	require.Equal(t, "live", body.Items[0].Slug)
	require.Nil(t, body.NextCursor)
}

func TestNavigationReplace(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/api/v1/studio/navigation",
		`[{"label":"Home","url":"/"},{"label":"Work","url":"/work"}]`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studio/navigation", "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []models.NavigationItemModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	require.Equal(t, "Home", items[0].Label)
}

func TestEmptyNavigationIsNotAnError(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/studio/navigation", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestSyncReportsTallies(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/studio/sync", `{
		"name": "Studio",
		"pages": {"home": {"slug": "home", "title": "Home"}, "custom": []},
		"articles": [{"slug": "a1", "title": "First"}],
		"projects": [],
		"navigation": []
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result store.SyncResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, 1, result.Pages.Succeeded)
	require.Equal(t, 1, result.Articles.Succeeded)

	w = do(t, r, http.MethodGet, "/api/v1/studio/pages/home", "")
	require.Equal(t, http.StatusOK, w.Code)
}
