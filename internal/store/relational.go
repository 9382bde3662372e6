package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-studio/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelationalStore persists site content in the normalized MySQL schema.
// Single-row write races are left to the database's upsert atomicity.
type RelationalStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRelationalStore(db *gorm.DB, log *zap.Logger) *RelationalStore {
	return &RelationalStore{db: db, log: log}
}

func (s *RelationalStore) siteBySlug(ctx context.Context, site string) (*models.SiteModel, error) {
	var row models.SiteModel
	err := s.db.WithContext(ctx).Where("slug = ?", site).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ensureSite resolves the tenant row, creating it on first write.
func (s *RelationalStore) ensureSite(ctx context.Context, site string) (*models.SiteModel, error) {
	row := models.SiteModel{Slug: site}
	err := s.db.WithContext(ctx).Where(models.SiteModel{Slug: site}).FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("ensure site %q: %w", site, err)
	}
	return &row, nil
}

func (s *RelationalStore) GetMetadata(ctx context.Context, site string) (*models.SiteMetadata, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil || row == nil {
		return nil, err
	}
	return row.SiteMetadata(), nil
}

func (s *RelationalStore) upsertMetadata(ctx context.Context, site *models.SiteModel, doc *models.SiteDocument) error {
	if doc.Name != "" {
		site.Name = doc.Name
	}
	if doc.Metadata != nil {
		site.Metadata = doc.Metadata
	}
	if doc.Typography != nil {
		site.Typography = doc.Typography
	}
	if doc.Spacing != nil {
		site.Spacing = doc.Spacing
	}
	if doc.Palette != nil {
		site.Palette = doc.Palette
	}
	if doc.Transitions != nil {
		site.Transitions = doc.Transitions
	}
	return s.db.WithContext(ctx).Save(site).Error
}

func (s *RelationalStore) GetPageBySlug(ctx context.Context, site, slug string) (*models.PageModel, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil || row == nil {
		return nil, err
	}
	var page models.PageModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", row.ID, slug).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *RelationalStore) UpsertPage(ctx context.Context, site string, page *models.PageModel) (*models.PageModel, error) {
	key, err := slugKey(page.Slug, page.ID)
	if err != nil {
		return nil, err
	}
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return nil, err
	}

	var existing models.PageModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", siteRow.ID, key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := *page
		row.Base = models.Base{}
		row.SiteID = siteRow.ID
		row.Slug = key
		row.Status = normalizeStatus(page.Status)
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	case err != nil:
		return nil, err
	}

	existing.Title = page.Title
	existing.Description = page.Description
	existing.Hero = page.Hero
	existing.Blocks = page.Blocks
	existing.SEO = page.SEO
	existing.Status = normalizeStatus(page.Status)
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *RelationalStore) ListArticles(ctx context.Context, site string, q ListQuery) (*ArticleList, error) {
	q = q.normalized()
	out := &ArticleList{Items: []models.ArticleModel{}}

	row, err := s.siteBySlug(ctx, site)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return out, nil
	}

	tx := s.db.WithContext(ctx).
		Where("site_id = ? AND status = ?", row.ID, q.Status)
	tx = applyCursor(tx, q.Cursor)

	var rows []models.ArticleModel
	if err := tx.Order("published_at DESC, id DESC").Limit(q.Limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out.Items, out.NextCursor = cutPage(rows, q.Limit, func(a *models.ArticleModel) (*time.Time, string) {
		return a.PublishedAt, a.ID
	})
	return out, nil
}

func (s *RelationalStore) GetArticleBySlug(ctx context.Context, site, slug string) (*models.ArticleModel, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil || row == nil {
		return nil, err
	}
	var article models.ArticleModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", row.ID, slug).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *RelationalStore) UpsertArticle(ctx context.Context, site string, article *models.ArticleModel) (*models.ArticleModel, error) {
	key, err := slugKey(article.Slug, article.ID)
	if err != nil {
		return nil, err
	}
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return nil, err
	}

	var existing models.ArticleModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", siteRow.ID, key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := *article
		row.Base = models.Base{}
		row.SiteID = siteRow.ID
		row.Slug = key
		row.Status = normalizeStatus(article.Status)
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	case err != nil:
		return nil, err
	}

	existing.Title = article.Title
	existing.Excerpt = article.Excerpt
	existing.CoverImage = article.CoverImage
	existing.Body = article.Body
	existing.Blocks = article.Blocks
	existing.SEO = article.SEO
	existing.Status = normalizeStatus(article.Status)
	existing.PublishedAt = article.PublishedAt
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *RelationalStore) ListProjects(ctx context.Context, site string, q ListQuery) (*ProjectList, error) {
	q = q.normalized()
	out := &ProjectList{Items: []models.ProjectModel{}}

	row, err := s.siteBySlug(ctx, site)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return out, nil
	}

	tx := s.db.WithContext(ctx).
		Where("site_id = ? AND status = ?", row.ID, q.Status)
	if q.Featured != nil {
		tx = tx.Where("featured = ?", *q.Featured)
	}
	if q.Visibility != "" {
		tx = tx.Where("visibility = ?", q.Visibility)
	}
	tx = applyCursor(tx, q.Cursor)

	var rows []models.ProjectModel
	if err := tx.Order("published_at DESC, id DESC").Limit(q.Limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out.Items, out.NextCursor = cutPage(rows, q.Limit, func(p *models.ProjectModel) (*time.Time, string) {
		return p.PublishedAt, p.ID
	})
	return out, nil
}

func (s *RelationalStore) GetProjectBySlug(ctx context.Context, site, slug string) (*models.ProjectModel, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil || row == nil {
		return nil, err
	}
	var project models.ProjectModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", row.ID, slug).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *RelationalStore) UpsertProject(ctx context.Context, site string, project *models.ProjectModel) (*models.ProjectModel, error) {
	key, err := slugKey(project.Slug, project.ID)
	if err != nil {
		return nil, err
	}
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return nil, err
	}

	var existing models.ProjectModel
	err = s.db.WithContext(ctx).Where("site_id = ? AND slug = ?", siteRow.ID, key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := *project
		row.Base = models.Base{}
		row.SiteID = siteRow.ID
		row.Slug = key
		row.Status = normalizeStatus(project.Status)
		if row.Visibility == "" {
			row.Visibility = models.VisibilityPublic
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	case err != nil:
		return nil, err
	}

	applyProjectFields(&existing, project)
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// applyProjectFields copies the user-facing fields of in onto row,
// leaving identity (id, site, slug) untouched.
func applyProjectFields(row, in *models.ProjectModel) {
	row.Title = in.Title
	row.Excerpt = in.Excerpt
	row.CoverImage = in.CoverImage
	row.Body = in.Body
	row.Blocks = in.Blocks
	row.SEO = in.SEO
	row.Category = in.Category
	row.Featured = in.Featured
	row.Status = normalizeStatus(in.Status)
	row.PublishedAt = in.PublishedAt
	if in.Visibility != "" {
		row.Visibility = in.Visibility
	}
	if row.Visibility == "" {
		row.Visibility = models.VisibilityPublic
	}
}

func (s *RelationalStore) GetNavigation(ctx context.Context, site string) ([]models.NavigationItemModel, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil {
		return nil, err
	}
	items := []models.NavigationItemModel{}
	if row == nil {
		return items, nil
	}
	err = s.db.WithContext(ctx).
		Where("site_id = ?", row.ID).
		Order("order_index ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SetNavigation replaces the site's navigation atomically: delete-all,
// insert-all in one transaction. An empty list is valid and leaves the
// site without navigation.
func (s *RelationalStore) SetNavigation(ctx context.Context, site string, items []models.NavigationItemModel) error {
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("site_id = ?", siteRow.ID).Delete(&models.NavigationItemModel{}).Error; err != nil {
			return err
		}
		for i := range items {
			row := items[i]
			row.Base = models.Base{}
			row.SiteID = siteRow.ID
			row.OrderIndex = i
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RelationalStore) GetFooter(ctx context.Context, site string) (*models.FooterModel, error) {
	row, err := s.siteBySlug(ctx, site)
	if err != nil || row == nil {
		return nil, err
	}
	var footer models.FooterModel
	err = s.db.WithContext(ctx).Where("site_id = ?", row.ID).First(&footer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &footer, nil
}

func (s *RelationalStore) SetFooter(ctx context.Context, site string, footer *models.FooterModel) error {
	siteRow, err := s.ensureSite(ctx, site)
	if err != nil {
		return err
	}
	var existing models.FooterModel
	err = s.db.WithContext(ctx).Where("site_id = ?", siteRow.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := *footer
		row.Base = models.Base{}
		row.SiteID = siteRow.ID
		return s.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return err
	}
	existing.Content = footer.Content
	existing.SocialLinks = footer.SocialLinks
	existing.Columns = footer.Columns
	return s.db.WithContext(ctx).Save(&existing).Error
}

// applyCursor adds the keyset predicate for the decoded cursor: rows
// strictly after the (published_at, id) position in descending order.
// NULL published_at sorts last under DESC, so NULL rows come after
// every timestamped position; a cursor taken on a NULL row continues
// the id-only walk through that tail. Invalid tokens fall back to the
// first page.
func applyCursor(tx *gorm.DB, token string) *gorm.DB {
	c, ok := decodeCursor(token)
	if !ok {
		return tx
	}
	if c.PublishedAt == nil {
		return tx.Where("published_at IS NULL AND id < ?", c.ID)
	}
	return tx.Where("published_at < ? OR published_at IS NULL OR (published_at = ? AND id < ?)",
		c.PublishedAt, c.PublishedAt, c.ID)
}

// cutPage trims a limit+1 probe down to one page and builds the next
// cursor from the last retained row.
func cutPage[T any](rows []T, limit int, key func(*T) (*time.Time, string)) ([]T, *string) {
	if len(rows) <= limit {
		return rows, nil
	}
	rows = rows[:limit]
	at, id := key(&rows[len(rows)-1])
	token := encodeCursor(at, id)
	return rows, &token
}
