package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atelier-studio/core/internal/models"
	"go.uber.org/zap"
)

const documentFilePerm = 0o644

// DocumentStore is the legacy flat-file backend: one JSON document per
// site, replaced whole on every write. The default site maps to a root
// document, every other site to a per-site file under sites/. This
// asymmetry is a legacy compatibility rule, not a bug.
//
// A per-site mutex serializes the read-modify-write cycle within this
// process; the legacy behavior had no lock at all.
type DocumentStore struct {
	dir         string
	defaultSite string
	log         *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDocumentStore(dir, defaultSite string, log *zap.Logger) *DocumentStore {
	return &DocumentStore{
		dir:         dir,
		defaultSite: defaultSite,
		log:         log,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *DocumentStore) lockFor(site string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[site]
	if !ok {
		l = &sync.Mutex{}
		s.locks[site] = l
	}
	return l
}

func (s *DocumentStore) path(site string) string {
	if site == s.defaultSite {
		return filepath.Join(s.dir, "content.json")
	}
	return filepath.Join(s.dir, "sites", site+".json")
}

// load reads the whole document for site. A missing file is not an
// error: it returns (nil, nil).
func (s *DocumentStore) load(site string) (*models.SiteDocument, error) {
	raw, err := os.ReadFile(s.path(site))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site document %q: %w", site, err)
	}
	var doc models.SiteDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse site document %q: %w", site, err)
	}
	return &doc, nil
}

// save replaces the whole document on disk.
func (s *DocumentStore) save(site string, doc *models.SiteDocument) error {
	path := s.path(site)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, documentFilePerm); err != nil {
		return fmt.Errorf("write site document %q: %w", site, err)
	}
	return nil
}

// mutate runs fn over the site's document under the per-site lock and
// writes the result back. A missing document starts empty.
func (s *DocumentStore) mutate(site string, fn func(doc *models.SiteDocument) error) error {
	l := s.lockFor(site)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(site)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = &models.SiteDocument{}
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(site, doc)
}

func (s *DocumentStore) GetMetadata(ctx context.Context, site string) (*models.SiteMetadata, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return nil, err
	}
	return &models.SiteMetadata{
		Site:        site,
		Name:        doc.Name,
		Metadata:    doc.Metadata,
		Typography:  doc.Typography,
		Spacing:     doc.Spacing,
		Palette:     doc.Palette,
		Transitions: doc.Transitions,
	}, nil
}

func (s *DocumentStore) GetPageBySlug(ctx context.Context, site, slug string) (*models.PageModel, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.Pages.Find(slug), nil
}

func (s *DocumentStore) UpsertPage(ctx context.Context, site string, page *models.PageModel) (*models.PageModel, error) {
	key, err := slugKey(page.Slug, page.ID)
	if err != nil {
		return nil, err
	}
	row := *page
	row.Slug = key
	row.Status = normalizeStatus(page.Status)
	err = s.mutate(site, func(doc *models.SiteDocument) error {
		doc.Pages.Put(&row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListArticles honors limit but ignores the cursor: this backend is
// single-page-only and always returns a nil next cursor.
func (s *DocumentStore) ListArticles(ctx context.Context, site string, q ListQuery) (*ArticleList, error) {
	q = q.normalized()
	out := &ArticleList{Items: []models.ArticleModel{}}

	doc, err := s.load(site)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return out, nil
	}
	for _, a := range doc.Articles {
		if normalizeStatus(a.Status) != q.Status {
			continue
		}
		out.Items = append(out.Items, a)
	}
	sortByPublishedAt(out.Items, func(a *models.ArticleModel) (*sortKeyParts, string) {
		return publishedParts(a.PublishedAt), a.ID
	})
	if len(out.Items) > q.Limit {
		out.Items = out.Items[:q.Limit]
	}
	return out, nil
}

func (s *DocumentStore) GetArticleBySlug(ctx context.Context, site, slug string) (*models.ArticleModel, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return nil, err
	}
	for i := range doc.Articles {
		if doc.Articles[i].Slug == slug {
			return &doc.Articles[i], nil
		}
	}
	return nil, nil
}

func (s *DocumentStore) UpsertArticle(ctx context.Context, site string, article *models.ArticleModel) (*models.ArticleModel, error) {
	key, err := slugKey(article.Slug, article.ID)
	if err != nil {
		return nil, err
	}
	row := *article
	row.Slug = key
	row.Status = normalizeStatus(article.Status)
	err = s.mutate(site, func(doc *models.SiteDocument) error {
		for i := range doc.Articles {
			if doc.Articles[i].Slug == key {
				doc.Articles[i] = row
				return nil
			}
		}
		doc.Articles = append(doc.Articles, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *DocumentStore) ListProjects(ctx context.Context, site string, q ListQuery) (*ProjectList, error) {
	q = q.normalized()
	out := &ProjectList{Items: []models.ProjectModel{}}

	doc, err := s.load(site)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return out, nil
	}
	for _, p := range doc.Projects {
		if normalizeStatus(p.Status) != q.Status {
			continue
		}
		if q.Featured != nil && p.Featured != *q.Featured {
			continue
		}
		if q.Visibility != "" && projectVisibility(&p) != q.Visibility {
			continue
		}
		out.Items = append(out.Items, p)
	}
	sortByPublishedAt(out.Items, func(p *models.ProjectModel) (*sortKeyParts, string) {
		return publishedParts(p.PublishedAt), p.ID
	})
	if len(out.Items) > q.Limit {
		out.Items = out.Items[:q.Limit]
	}
	return out, nil
}

func (s *DocumentStore) GetProjectBySlug(ctx context.Context, site, slug string) (*models.ProjectModel, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return nil, err
	}
	for i := range doc.Projects {
		if doc.Projects[i].Slug == slug {
			return &doc.Projects[i], nil
		}
	}
	return nil, nil
}

func (s *DocumentStore) UpsertProject(ctx context.Context, site string, project *models.ProjectModel) (*models.ProjectModel, error) {
	key, err := slugKey(project.Slug, project.ID)
	if err != nil {
		return nil, err
	}
	row := *project
	row.Slug = key
	row.Status = normalizeStatus(project.Status)
	if row.Visibility == "" {
		row.Visibility = models.VisibilityPublic
	}
	err = s.mutate(site, func(doc *models.SiteDocument) error {
		for i := range doc.Projects {
			if doc.Projects[i].Slug == key {
				doc.Projects[i] = row
				return nil
			}
		}
		doc.Projects = append(doc.Projects, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *DocumentStore) GetNavigation(ctx context.Context, site string) ([]models.NavigationItemModel, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return []models.NavigationItemModel{}, err
	}
	if doc.Navigation == nil {
		return []models.NavigationItemModel{}, nil
	}
	return doc.Navigation, nil
}

func (s *DocumentStore) SetNavigation(ctx context.Context, site string, items []models.NavigationItemModel) error {
	return s.mutate(site, func(doc *models.SiteDocument) error {
		if items == nil {
			items = []models.NavigationItemModel{}
		}
		for i := range items {
			items[i].OrderIndex = i
		}
		doc.Navigation = items
		return nil
	})
}

func (s *DocumentStore) GetFooter(ctx context.Context, site string) (*models.FooterModel, error) {
	doc, err := s.load(site)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.Footer, nil
}

func (s *DocumentStore) SetFooter(ctx context.Context, site string, footer *models.FooterModel) error {
	return s.mutate(site, func(doc *models.SiteDocument) error {
		doc.Footer = footer
		return nil
	})
}

// SyncDocument replaces the whole stored document; for this backend a
// full-document write needs no reconciliation.
func (s *DocumentStore) SyncDocument(ctx context.Context, site string, doc *models.SiteDocument) (*SyncResult, error) {
	l := s.lockFor(site)
	l.Lock()
	defer l.Unlock()

	if err := s.save(site, doc); err != nil {
		return nil, err
	}
	return &SyncResult{
		Pages:    SyncTally{Succeeded: len(doc.Pages.All())},
		Articles: SyncTally{Succeeded: len(doc.Articles)},
		Projects: SyncTally{Succeeded: len(doc.Projects)},
	}, nil
}

func projectVisibility(p *models.ProjectModel) string {
	if p.Visibility == "" {
		return models.VisibilityPublic
	}
	return p.Visibility
}

// sortKeyParts orders in-memory listings the way the relational
// backend does: published_at descending with unpublished rows last,
// id descending as the tie-breaker.
type sortKeyParts struct {
	unix int64
	set  bool
}

func publishedParts(at *time.Time) *sortKeyParts {
	if at == nil {
		return &sortKeyParts{}
	}
	return &sortKeyParts{unix: at.UnixNano(), set: true}
}

func sortByPublishedAt[T any](items []T, key func(*T) (*sortKeyParts, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, idi := key(&items[i])
		kj, idj := key(&items[j])
		if ki.set != kj.set {
			return ki.set
		}
		if ki.unix != kj.unix {
			return ki.unix > kj.unix
		}
		return strings.Compare(idi, idj) > 0
	})
}
