package store

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier-studio/core/internal/models"
	"github.com/atelier-studio/core/internal/pkg/slugify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordKey is the identity-bearing slice of an incoming or stored
// record: enough to decide which row an element corresponds to.
type recordKey struct {
	ID    string
	Slug  string
	Title string
}

// sectionOps are the per-section lookups reconciliation needs. All
// lookups are scoped to one site; no cross-tenant resolution occurs.
type sectionOps interface {
	find(ctx context.Context, slug string) (*recordKey, error)
	all(ctx context.Context) ([]recordKey, error)
}

// resolution is the outcome of identity resolution for one element:
// the existing row it updates (nil for a new row) and the slug it must
// end up with.
type resolution struct {
	existing *recordKey
	slug     string
}

// resolveRecord decides which existing row (if any) the incoming
// element corresponds to, and its final slug.
//
// Lookup priority: explicit slug, then the legacy id-as-slug
// convention, then exact title, then case-insensitive title. When the
// slug and id lookups hit different rows, the id match is the row
// being edited and the slug hit is merely the occupant of the desired
// name; renaming onto an occupied slug is refused, keeping the row's
// current slug, so neither row is corrupted. An absent slug never
// renames an existing row.
func resolveRecord(ctx context.Context, in recordKey, ops sectionOps) (resolution, error) {
	var bySlug, byID *recordKey
	var err error
	if in.Slug != "" {
		if bySlug, err = ops.find(ctx, in.Slug); err != nil {
			return resolution{}, err
		}
	}
	if in.ID != "" && in.ID != in.Slug {
		if byID, err = ops.find(ctx, in.ID); err != nil {
			return resolution{}, err
		}
	}

	var existing *recordKey
	switch {
	case byID != nil && (bySlug == nil || bySlug.ID != byID.ID):
		existing = byID
	case bySlug != nil:
		existing = bySlug
	case in.Title != "":
		rows, err := ops.all(ctx)
		if err != nil {
			return resolution{}, err
		}
		for i := range rows {
			if rows[i].Title == in.Title {
				existing = &rows[i]
				break
			}
		}
		if existing == nil {
			for i := range rows {
				if strings.EqualFold(rows[i].Title, in.Title) {
					existing = &rows[i]
					break
				}
			}
		}
	}

	final := in.Slug
	if final == "" {
		switch {
		case existing != nil:
			final = existing.Slug
		case in.ID != "":
			final = in.ID
		default:
			final = slugify.ForTitle(in.Title)
		}
	}

	if existing != nil && final != existing.Slug {
		occupant, err := ops.find(ctx, final)
		if err != nil {
			return resolution{}, err
		}
		if occupant != nil && occupant.ID != existing.ID {
			final = existing.Slug
		}
	}

	return resolution{existing: existing, slug: final}, nil
}

// reconcileBatch applies one array section sequentially. Elements are
// processed in array order and later elements observe earlier
// elements' effects; each element succeeds or fails independently.
// Within one batch the first write wins a slug: later elements
// resolving to the same final slug are skipped.
func reconcileBatch[T any](
	ctx context.Context,
	section string,
	items []T,
	key func(*T) recordKey,
	ops sectionOps,
	apply func(ctx context.Context, item *T, res resolution) error,
	log *zap.Logger,
) SyncTally {
	var tally SyncTally
	seen := make(map[string]bool, len(items))

	for i := range items {
		res, err := resolveRecord(ctx, key(&items[i]), ops)
		if err != nil {
			tally.Failed++
			log.Warn("record identity resolution failed",
				zap.String("section", section), zap.Int("index", i), zap.Error(err))
			continue
		}
		if seen[res.slug] {
			tally.Skipped++
			log.Warn("duplicate slug within batch, skipping",
				zap.String("section", section), zap.String("slug", res.slug), zap.Int("index", i))
			continue
		}
		seen[res.slug] = true

		if err := apply(ctx, &items[i], res); err != nil {
			tally.Failed++
			log.Warn("record apply failed",
				zap.String("section", section), zap.String("slug", res.slug), zap.Error(err))
			continue
		}
		tally.Succeeded++
	}
	return tally
}

// SyncDocument projects a full content document into per-row upserts.
// Metadata, navigation and footer are replaced wholesale; the
// array-typed sections go through identity resolution so edits to
// slugs and titles land on the existing rows instead of forking them.
func (s *RelationalStore) SyncDocument(ctx context.Context, site string, doc *models.SiteDocument) (*SyncResult, error) {
	if doc == nil {
		return nil, errors.New("store: nil site document")
	}
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return nil, err
	}
	if err := s.upsertMetadata(ctx, siteRow, doc); err != nil {
		return nil, err
	}

	log := s.log
	if log == nil {
		log = zap.NewNop()
	}
	res := &SyncResult{}

	for _, slug := range models.CorePageSlugs {
		page := doc.Pages.Core(slug)
		if page == nil {
			continue
		}
		p := *page
		p.Slug = slug
		if _, err := s.UpsertPage(ctx, site, &p); err != nil {
			res.Pages.Failed++
			log.Warn("core page upsert failed", zap.String("slug", slug), zap.Error(err))
			continue
		}
		res.Pages.Succeeded++
	}

	pages := pageSection{s: s, siteID: siteRow.ID}
	custom := reconcileBatch(ctx, "pages", doc.Pages.Custom,
		func(p *models.PageModel) recordKey {
			return recordKey{ID: p.ID, Slug: p.Slug, Title: p.Title}
		},
		pages, pages.apply, log)
	res.Pages.Succeeded += custom.Succeeded
	res.Pages.Failed += custom.Failed
	res.Pages.Skipped += custom.Skipped

	articles := articleSection{s: s, siteID: siteRow.ID}
	res.Articles = reconcileBatch(ctx, "articles", doc.Articles,
		func(a *models.ArticleModel) recordKey {
			return recordKey{ID: a.ID, Slug: a.Slug, Title: a.Title}
		},
		articles, articles.apply, log)

	projects := projectSection{s: s, siteID: siteRow.ID}
	res.Projects = reconcileBatch(ctx, "projects", doc.Projects,
		func(p *models.ProjectModel) recordKey {
			return recordKey{ID: p.ID, Slug: p.Slug, Title: p.Title}
		},
		projects, projects.apply, log)

	if err := s.SetNavigation(ctx, site, doc.Navigation); err != nil {
		return nil, err
	}
	if doc.Footer != nil {
		if err := s.SetFooter(ctx, site, doc.Footer); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type projectSection struct {
	s      *RelationalStore
	siteID string
}

func (p projectSection) find(ctx context.Context, slug string) (*recordKey, error) {
	var row models.ProjectModel
	err := p.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ? AND slug = ?", p.siteID, slug).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recordKey{ID: row.ID, Slug: row.Slug, Title: row.Title}, nil
}

func (p projectSection) all(ctx context.Context) ([]recordKey, error) {
	var rows []models.ProjectModel
	err := p.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ?", p.siteID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	keys := make([]recordKey, len(rows))
	for i, r := range rows {
		keys[i] = recordKey{ID: r.ID, Slug: r.Slug, Title: r.Title}
	}
	return keys, nil
}

func (p projectSection) apply(ctx context.Context, in *models.ProjectModel, res resolution) error {
	if res.existing == nil {
		row := *in
		row.Base = models.Base{}
		row.SiteID = p.siteID
		row.Slug = res.slug
		row.Status = normalizeStatus(in.Status)
		if row.Visibility == "" {
			row.Visibility = models.VisibilityPublic
		}
		return p.s.db.WithContext(ctx).Create(&row).Error
	}

	var row models.ProjectModel
	if err := p.s.db.WithContext(ctx).First(&row, "id = ?", res.existing.ID).Error; err != nil {
		return err
	}
	applyProjectFields(&row, in)
	row.Slug = res.slug
	return p.s.db.WithContext(ctx).Save(&row).Error
}

type articleSection struct {
	s      *RelationalStore
	siteID string
}

func (a articleSection) find(ctx context.Context, slug string) (*recordKey, error) {
	var row models.ArticleModel
	err := a.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ? AND slug = ?", a.siteID, slug).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recordKey{ID: row.ID, Slug: row.Slug, Title: row.Title}, nil
}

func (a articleSection) all(ctx context.Context) ([]recordKey, error) {
	var rows []models.ArticleModel
	err := a.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ?", a.siteID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	keys := make([]recordKey, len(rows))
	for i, r := range rows {
		keys[i] = recordKey{ID: r.ID, Slug: r.Slug, Title: r.Title}
	}
	return keys, nil
}

func (a articleSection) apply(ctx context.Context, in *models.ArticleModel, res resolution) error {
	if res.existing == nil {
		row := *in
		row.Base = models.Base{}
		row.SiteID = a.siteID
		row.Slug = res.slug
		row.Status = normalizeStatus(in.Status)
		return a.s.db.WithContext(ctx).Create(&row).Error
	}

	var row models.ArticleModel
	if err := a.s.db.WithContext(ctx).First(&row, "id = ?", res.existing.ID).Error; err != nil {
		return err
	}
	row.Title = in.Title
	row.Excerpt = in.Excerpt
	row.CoverImage = in.CoverImage
	row.Body = in.Body
	row.Blocks = in.Blocks
	row.SEO = in.SEO
	row.Status = normalizeStatus(in.Status)
	row.PublishedAt = in.PublishedAt
	row.Slug = res.slug
	return a.s.db.WithContext(ctx).Save(&row).Error
}

type pageSection struct {
	s      *RelationalStore
	siteID string
}

func (p pageSection) find(ctx context.Context, slug string) (*recordKey, error) {
	var row models.PageModel
	err := p.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ? AND slug = ?", p.siteID, slug).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recordKey{ID: row.ID, Slug: row.Slug, Title: row.Title}, nil
}

func (p pageSection) all(ctx context.Context) ([]recordKey, error) {
	var rows []models.PageModel
	err := p.s.db.WithContext(ctx).Select("id", "slug", "title").
		Where("site_id = ?", p.siteID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	keys := make([]recordKey, len(rows))
	for i, r := range rows {
		keys[i] = recordKey{ID: r.ID, Slug: r.Slug, Title: r.Title}
	}
	return keys, nil
}

func (p pageSection) apply(ctx context.Context, in *models.PageModel, res resolution) error {
	if res.existing == nil {
		row := *in
		row.Base = models.Base{}
		row.SiteID = p.siteID
		row.Slug = res.slug
		row.Status = normalizeStatus(in.Status)
		return p.s.db.WithContext(ctx).Create(&row).Error
	}

	var row models.PageModel
	if err := p.s.db.WithContext(ctx).First(&row, "id = ?", res.existing.ID).Error; err != nil {
		return err
	}
	row.Title = in.Title
	row.Description = in.Description
	row.Hero = in.Hero
	row.Blocks = in.Blocks
	row.SEO = in.SEO
	row.Status = normalizeStatus(in.Status)
	row.Slug = res.slug
	return p.s.db.WithContext(ctx).Save(&row).Error
}
