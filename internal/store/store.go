// Package store implements the content storage and synchronization
// core: a flat per-site document backend, a normalized relational
// backend, and the mode-aware repository that routes between them
// during a staged migration.
package store

import (
	"context"
	"errors"

	"github.com/atelier-studio/core/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

var (
	// ErrMissingSlug means an upsert payload carries neither a slug nor
	// a legacy id to derive one from. Caller bug, not transient.
	ErrMissingSlug = errors.New("store: payload has no slug and no id to derive one from")
	// ErrUnknownMode means the configured storage mode is not one of
	// json, db, dual_write, dual_read.
	ErrUnknownMode = errors.New("store: unknown storage mode")
)

// ListQuery narrows article/project listings. Status defaults to
// published. Featured and Visibility only apply to projects.
type ListQuery struct {
	Limit      int
	Cursor     string
	Status     string
	Featured   *bool
	Visibility string
}

func (q ListQuery) normalized() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Status == "" {
		q.Status = models.StatusPublished
	}
	return q
}

// ArticleList is one page of articles plus the opaque position of the
// next page. NextCursor is nil on the last page.
type ArticleList struct {
	Items      []models.ArticleModel `json:"items"`
	NextCursor *string               `json:"nextCursor"`
}

// ProjectList is one page of projects plus the next-page cursor.
type ProjectList struct {
	Items      []models.ProjectModel `json:"items"`
	NextCursor *string               `json:"nextCursor"`
}

// SyncTally reports a partial-success bulk apply: one bad record never
// blocks the rest of the batch.
type SyncTally struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// SyncResult is the per-section outcome of a full-document write.
type SyncResult struct {
	Pages    SyncTally `json:"pages"`
	Articles SyncTally `json:"articles"`
	Projects SyncTally `json:"projects"`
}

// ContentStore is the storage contract implemented identically by the
// document backend, the relational backend and the Repository. Every
// call takes an explicit site key; there is no implicit current site.
// Get operations return (nil, nil) when the record is absent.
type ContentStore interface {
	GetMetadata(ctx context.Context, site string) (*models.SiteMetadata, error)

	GetPageBySlug(ctx context.Context, site, slug string) (*models.PageModel, error)
	UpsertPage(ctx context.Context, site string, page *models.PageModel) (*models.PageModel, error)

	ListArticles(ctx context.Context, site string, q ListQuery) (*ArticleList, error)
	GetArticleBySlug(ctx context.Context, site, slug string) (*models.ArticleModel, error)
	UpsertArticle(ctx context.Context, site string, article *models.ArticleModel) (*models.ArticleModel, error)

	ListProjects(ctx context.Context, site string, q ListQuery) (*ProjectList, error)
	GetProjectBySlug(ctx context.Context, site, slug string) (*models.ProjectModel, error)
	UpsertProject(ctx context.Context, site string, project *models.ProjectModel) (*models.ProjectModel, error)

	GetNavigation(ctx context.Context, site string) ([]models.NavigationItemModel, error)
	SetNavigation(ctx context.Context, site string, items []models.NavigationItemModel) error

	GetFooter(ctx context.Context, site string) (*models.FooterModel, error)
	SetFooter(ctx context.Context, site string, footer *models.FooterModel) error

	SyncDocument(ctx context.Context, site string, doc *models.SiteDocument) (*SyncResult, error)
}

// slugKey derives the upsert key: the explicit slug, or the payload id
// under the legacy convention that id and slug share a namespace.
func slugKey(slug, id string) (string, error) {
	if slug != "" {
		return slug, nil
	}
	if id != "" {
		return id, nil
	}
	return "", ErrMissingSlug
}

func normalizeStatus(status string) string {
	if status == "" {
		return models.StatusDraft
	}
	return status
}
