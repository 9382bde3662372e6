package store

import (
	"context"
	"fmt"

	"github.com/atelier-studio/core/internal/models"
	"go.uber.org/zap"
)

// Mode selects how the Repository routes calls between the relational
// and document backends. It is resolved once at startup and injected;
// downstream code never re-reads the raw setting.
type Mode string

const (
	// ModeJSON sends all reads and writes to the document store only.
	ModeJSON Mode = "json"
	// ModeDB sends all reads and writes to the relational store only.
	ModeDB Mode = "db"
	// ModeDualWrite writes to the relational store first, then
	// best-effort to the document store; reads stay on the document
	// store so legacy readers remain consistent during migration.
	ModeDualWrite Mode = "dual_write"
	// ModeDualRead writes to the relational store only; reads try the
	// relational store and fall back to the document store on any
	// failure, assuming the relational data is still being backfilled.
	ModeDualRead Mode = "dual_read"
)

// ParseMode validates a raw mode string.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case ModeJSON, ModeDB, ModeDualWrite, ModeDualRead:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
}

// Repository implements ContentStore by dispatching every call to one
// or both backends according to the configured mode. The dispatch is a
// strict finite table bucketed by read/write; there is no per-entity
// override. A failure on the authoritative path propagates; a failure
// on a secondary or fallback path is logged and swallowed.
type Repository struct {
	mode Mode
	rel  ContentStore
	doc  ContentStore
	log  *zap.Logger
}

// NewRepository wires the dispatcher. Backends a mode never touches may
// be nil; a mode that needs a missing backend is a construction error.
func NewRepository(mode Mode, rel, doc ContentStore, log *zap.Logger) (*Repository, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode != ModeJSON && rel == nil {
		return nil, fmt.Errorf("storage mode %q requires the relational store", mode)
	}
	if mode != ModeDB && doc == nil {
		return nil, fmt.Errorf("storage mode %q requires the document store", mode)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{mode: mode, rel: rel, doc: doc, log: log}, nil
}

// Mode returns the configured storage mode.
func (r *Repository) Mode() Mode { return r.mode }

// readFrom routes one read through the mode table.
func readFrom[T any](r *Repository, op string, fn func(ContentStore) (T, error)) (T, error) {
	switch r.mode {
	case ModeJSON, ModeDualWrite:
		return fn(r.doc)
	case ModeDB:
		return fn(r.rel)
	case ModeDualRead:
		out, err := fn(r.rel)
		if err == nil {
			return out, nil
		}
		r.log.Warn("relational read failed, falling back to document store",
			zap.String("op", op), zap.Error(err))
		return fn(r.doc)
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownMode, r.mode)
}

// writeTo routes one write through the mode table.
func writeTo[T any](r *Repository, op string, fn func(ContentStore) (T, error)) (T, error) {
	switch r.mode {
	case ModeJSON:
		return fn(r.doc)
	case ModeDB, ModeDualRead:
		return fn(r.rel)
	case ModeDualWrite:
		out, err := fn(r.rel)
		if err != nil {
			return out, err
		}
		if _, docErr := fn(r.doc); docErr != nil {
			r.log.Warn("secondary document write failed, authoritative write kept",
				zap.String("op", op), zap.Error(docErr))
		}
		return out, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownMode, r.mode)
}

func (r *Repository) GetMetadata(ctx context.Context, site string) (*models.SiteMetadata, error) {
	return readFrom(r, "getMetadata", func(s ContentStore) (*models.SiteMetadata, error) {
		return s.GetMetadata(ctx, site)
	})
}

func (r *Repository) GetPageBySlug(ctx context.Context, site, slug string) (*models.PageModel, error) {
	return readFrom(r, "getPageBySlug", func(s ContentStore) (*models.PageModel, error) {
		return s.GetPageBySlug(ctx, site, slug)
	})
}

func (r *Repository) UpsertPage(ctx context.Context, site string, page *models.PageModel) (*models.PageModel, error) {
	return writeTo(r, "upsertPage", func(s ContentStore) (*models.PageModel, error) {
		return s.UpsertPage(ctx, site, page)
	})
}

func (r *Repository) ListArticles(ctx context.Context, site string, q ListQuery) (*ArticleList, error) {
	return readFrom(r, "listArticles", func(s ContentStore) (*ArticleList, error) {
		return s.ListArticles(ctx, site, q)
	})
}

func (r *Repository) GetArticleBySlug(ctx context.Context, site, slug string) (*models.ArticleModel, error) {
	return readFrom(r, "getArticleBySlug", func(s ContentStore) (*models.ArticleModel, error) {
		return s.GetArticleBySlug(ctx, site, slug)
	})
}

func (r *Repository) UpsertArticle(ctx context.Context, site string, article *models.ArticleModel) (*models.ArticleModel, error) {
	return writeTo(r, "upsertArticle", func(s ContentStore) (*models.ArticleModel, error) {
		return s.UpsertArticle(ctx, site, article)
	})
}

func (r *Repository) ListProjects(ctx context.Context, site string, q ListQuery) (*ProjectList, error) {
	return readFrom(r, "listProjects", func(s ContentStore) (*ProjectList, error) {
		return s.ListProjects(ctx, site, q)
	})
}

func (r *Repository) GetProjectBySlug(ctx context.Context, site, slug string) (*models.ProjectModel, error) {
	return readFrom(r, "getProjectBySlug", func(s ContentStore) (*models.ProjectModel, error) {
		return s.GetProjectBySlug(ctx, site, slug)
	})
}

func (r *Repository) UpsertProject(ctx context.Context, site string, project *models.ProjectModel) (*models.ProjectModel, error) {
	return writeTo(r, "upsertProject", func(s ContentStore) (*models.ProjectModel, error) {
		return s.UpsertProject(ctx, site, project)
	})
}

func (r *Repository) GetNavigation(ctx context.Context, site string) ([]models.NavigationItemModel, error) {
	return readFrom(r, "getNavigation", func(s ContentStore) ([]models.NavigationItemModel, error) {
		return s.GetNavigation(ctx, site)
	})
}

func (r *Repository) SetNavigation(ctx context.Context, site string, items []models.NavigationItemModel) error {
	_, err := writeTo(r, "setNavigation", func(s ContentStore) (struct{}, error) {
		return struct{}{}, s.SetNavigation(ctx, site, items)
	})
	return err
}

func (r *Repository) GetFooter(ctx context.Context, site string) (*models.FooterModel, error) {
	return readFrom(r, "getFooter", func(s ContentStore) (*models.FooterModel, error) {
		return s.GetFooter(ctx, site)
	})
}

func (r *Repository) SetFooter(ctx context.Context, site string, footer *models.FooterModel) error {
	_, err := writeTo(r, "setFooter", func(s ContentStore) (struct{}, error) {
		return struct{}{}, s.SetFooter(ctx, site, footer)
	})
	return err
}

func (r *Repository) SyncDocument(ctx context.Context, site string, doc *models.SiteDocument) (*SyncResult, error) {
	return writeTo(r, "syncDocument", func(s ContentStore) (*SyncResult, error) {
		return s.SyncDocument(ctx, site, doc)
	})
}
