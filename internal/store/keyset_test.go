package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/atelier-studio/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyKeyset mirrors the SQL predicate applyCursor generates, over
// rows held in (published_at DESC NULLS LAST, id DESC) order: for a
// timestamped cursor, rows strictly before the position plus the whole
// NULL tail; for a cursor taken on a NULL row, NULL rows with a
// smaller id.
func applyKeyset(rows []models.ArticleModel, token string) []models.ArticleModel {
	c, ok := decodeCursor(token)
	if !ok {
		return rows
	}
	out := make([]models.ArticleModel, 0, len(rows))
	for _, r := range rows {
		if c.PublishedAt == nil {
			if r.PublishedAt == nil && r.ID < c.ID {
				out = append(out, r)
			}
			continue
		}
		if r.PublishedAt == nil {
			out = append(out, r)
			continue
		}
		at := r.PublishedAt.UTC()
		if at.Before(*c.PublishedAt) || (at.Equal(*c.PublishedAt) && r.ID < c.ID) {
			out = append(out, r)
		}
	}
	return out
}

// walkAll pages through rows with the probe/cut cycle and returns the
// visited ids in order, failing on duplicates or runaway walks.
func walkAll(t *testing.T, rows []models.ArticleModel, limit int) []string {
	t.Helper()
	var visited []string
	seen := map[string]bool{}
	token := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 50, "walk did not terminate")
		window := applyKeyset(rows, token)
		probe := window
		if len(probe) > limit+1 {
			probe = probe[:limit+1]
		}
		items, next := cutPage(probe, limit, func(a *models.ArticleModel) (*time.Time, string) {
			return a.PublishedAt, a.ID
		})
		for _, it := range items {
			require.False(t, seen[it.ID], "row %s visited twice", it.ID)
			seen[it.ID] = true
			visited = append(visited, it.ID)
		}
		if next == nil {
			return visited
		}
		token = *next
	}
}

func TestKeysetWalkVisitsEveryRowExactlyOnce(t *testing.T) {
	const n, limit = 23, 5

	rows := make([]models.ArticleModel, 0, n)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		at := base.Add(-time.Duration(i) * time.Minute)
		a := models.ArticleModel{Slug: fmt.Sprintf("a-%02d", i), PublishedAt: &at}
		a.ID = fmt.Sprintf("id-%02d", i)
		rows = append(rows, a)
	}
	// rows are already in (published_at DESC, id DESC) order

	seen := map[string]bool{}
	var prev *time.Time
	token := ""
	pages := 0
	for {
		window := applyKeyset(rows, token)
		probe := window
		if len(probe) > limit+1 {
			probe = probe[:limit+1]
		}
		items, next := cutPage(probe, limit, func(a *models.ArticleModel) (*time.Time, string) {
			return a.PublishedAt, a.ID
		})
		for _, it := range items {
			require.False(t, seen[it.ID], "row %s visited twice", it.ID)
			seen[it.ID] = true
			if prev != nil {
				assert.False(t, it.PublishedAt.After(*prev), "descending publishedAt order violated")
			}
			prev = it.PublishedAt
		}
		pages++
		if next == nil {
			break
		}
		token = *next
		require.Less(t, pages, 20, "walk did not terminate")
	}

	assert.Len(t, seen, n, "every row visited exactly once, no gaps")
	assert.Equal(t, (n+limit-1)/limit, pages)
}

func TestKeysetTieBreakOnEqualTimestamps(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]models.ArticleModel, 0, 4)
	for _, id := range []string{"id-9", "id-7", "id-4", "id-1"} {
		ts := at
		a := models.ArticleModel{Slug: "s" + id, PublishedAt: &ts}
		a.ID = id
		rows = append(rows, a)
	}

	first, next := cutPage(rows[:3], 2, func(a *models.ArticleModel) (*time.Time, string) {
		return a.PublishedAt, a.ID
	})
	require.Len(t, first, 2)
	require.NotNil(t, next)

	rest := applyKeyset(rows, *next)
	require.Len(t, rest, 2)
	assert.Equal(t, "id-4", rest[0].ID)
	assert.Equal(t, "id-1", rest[1].ID)
}

func TestKeysetWalkCoversDraftRows(t *testing.T) {
	rows := make([]models.ArticleModel, 0, 7)
	for _, id := range []string{"d-6", "d-5", "d-4", "d-3", "d-2", "d-1", "d-0"} {
		a := models.ArticleModel{Slug: "s" + id, Status: models.StatusDraft}
		a.ID = id
		rows = append(rows, a)
	}

	visited := walkAll(t, rows, 3)
	assert.Equal(t, []string{"d-6", "d-5", "d-4", "d-3", "d-2", "d-1", "d-0"}, visited)
}

func TestKeysetWalkCrossesIntoUnpublishedTail(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]models.ArticleModel, 0, 9)
	for i := 0; i < 4; i++ {
		at := base.Add(-time.Duration(i) * time.Hour)
		a := models.ArticleModel{Slug: fmt.Sprintf("p-%d", 3-i), PublishedAt: &at}
		a.ID = fmt.Sprintf("p-%d", 3-i)
		rows = append(rows, a)
	}
	for _, id := range []string{"n-4", "n-3", "n-2", "n-1", "n-0"} {
		a := models.ArticleModel{Slug: "s" + id}
		a.ID = id
		rows = append(rows, a)
	}

	visited := walkAll(t, rows, 3)
	require.Len(t, visited, 9)
	assert.Equal(t, []string{"p-3", "p-2", "p-1"}, visited[:3])
	assert.Equal(t, []string{"n-4", "n-3", "n-2", "n-1", "n-0"}, visited[4:])
}

func TestCutPageLastPageHasNoCursor(t *testing.T) {
	at := time.Now().UTC()
	rows := []models.ArticleModel{{Slug: "only", PublishedAt: &at}}
	items, next := cutPage(rows, 5, func(a *models.ArticleModel) (*time.Time, string) {
		return a.PublishedAt, a.ID
	})
	assert.Len(t, items, 1)
	assert.Nil(t, next)
}
