// Package content exposes the storage contract over HTTP: per-site
// metadata, pages, articles, projects, navigation, footer, and the
// full-document sync endpoint.
package content

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atelier-studio/core/internal/models"
	"github.com/atelier-studio/core/internal/pkg/cache"
	"github.com/atelier-studio/core/internal/pkg/pagination"
	"github.com/atelier-studio/core/internal/pkg/response"
	"github.com/atelier-studio/core/internal/store"
)

// Handler serves content routes over a ContentStore. The cache client
// may be nil, which disables caching entirely.
type Handler struct {
	store store.ContentStore
	cache *cache.Client
	log   *zap.Logger
}

func NewHandler(s store.ContentStore, c *cache.Client, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: s, cache: c, log: log}
}

// Register mounts the content routes on the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	site := g.Group("/:site")
	{
		site.GET("/metadata", h.GetMetadata)

		site.GET("/pages/:slug", h.GetPage)
		site.PUT("/pages/:slug", h.UpsertPage)

		site.GET("/articles", h.ListArticles)
		site.GET("/articles/:slug", h.GetArticle)
		site.PUT("/articles/:slug", h.UpsertArticle)

		site.GET("/projects", h.ListProjects)
		site.GET("/projects/:slug", h.GetProject)
		site.PUT("/projects/:slug", h.UpsertProject)

		site.GET("/navigation", h.GetNavigation)
		site.PUT("/navigation", h.SetNavigation)

		site.GET("/footer", h.GetFooter)
		site.PUT("/footer", h.SetFooter)

		site.POST("/sync", h.Sync)
	}
}

// cached serves a read through the cache when possible, falling back to
// fetch and filling the cache on the way out. Not-found stays uncached.
func (h *Handler) cached(c *gin.Context, key string, fetch func() (interface{}, error)) {
	if body, ok := h.cache.Get(c.Request.Context(), key); ok {
		c.Data(200, "application/json; charset=utf-8", []byte(body))
		return
	}

	out, err := fetch()
	if err != nil {
		response.ReadFailed(c, err)
		return
	}
	if isNil(out) {
		response.NotFound(c)
		return
	}

	if raw, err := json.Marshal(out); err == nil {
		h.cache.Set(c.Request.Context(), key, string(raw), cache.DefaultTTL)
	}
	response.OK(c, out)
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *models.SiteMetadata:
		return t == nil
	case *models.PageModel:
		return t == nil
	case *models.ArticleModel:
		return t == nil
	case *models.ProjectModel:
		return t == nil
	case *models.FooterModel:
		return t == nil
	}
	return false
}

func (h *Handler) GetMetadata(c *gin.Context) {
	site := c.Param("site")
	h.cached(c, cache.Key(site, "metadata"), func() (interface{}, error) {
		return h.store.GetMetadata(c.Request.Context(), site)
	})
}

func (h *Handler) GetPage(c *gin.Context) {
	site, slug := c.Param("site"), c.Param("slug")
	h.cached(c, cache.Key(site, "page", slug), func() (interface{}, error) {
		return h.store.GetPageBySlug(c.Request.Context(), site, slug)
	})
}

func (h *Handler) UpsertPage(c *gin.Context) {
	site := c.Param("site")

	var page models.PageModel
	if err := c.ShouldBindJSON(&page); err != nil {
		response.BadRequest(c, "invalid page payload: "+err.Error())
		return
	}
	page.Slug = c.Param("slug")

	saved, err := h.store.UpsertPage(c.Request.Context(), site, &page)
	if err != nil {
		response.WriteFailed(c, err)
		return
	}
	h.cache.InvalidateSite(c.Request.Context(), site)
	response.OK(c, saved)
}

func (h *Handler) ListArticles(c *gin.Context) {
	site := c.Param("site")
	list, err := h.store.ListArticles(c.Request.Context(), site, pagination.FromContext(c))
	if err != nil {
		response.ReadFailed(c, err)
		return
	}
	response.List(c, list.Items, list.NextCursor)
}

func (h *Handler) GetArticle(c *gin.Context) {
	site, slug := c.Param("site"), c.Param("slug")
	h.cached(c, cache.Key(site, "article", slug), func() (interface{}, error) {
		return h.store.GetArticleBySlug(c.Request.Context(), site, slug)
	})
}

func (h *Handler) UpsertArticle(c *gin.Context) {
	site := c.Param("site")

	var article models.ArticleModel
	if err := c.ShouldBindJSON(&article); err != nil {
		response.BadRequest(c, "invalid article payload: "+err.Error())
		return
	}
	article.Slug = c.Param("slug")

	saved, err := h.store.UpsertArticle(c.Request.Context(), site, &article)
	if err != nil {
		response.WriteFailed(c, err)
		return
	}
	h.cache.InvalidateSite(c.Request.Context(), site)
	response.OK(c, saved)
}

func (h *Handler) ListProjects(c *gin.Context) {
	site := c.Param("site")
	list, err := h.store.ListProjects(c.Request.Context(), site, pagination.FromContext(c))
	if err != nil {
		response.ReadFailed(c, err)
		return
	}
	response.List(c, list.Items, list.NextCursor)
}

func (h *Handler) GetProject(c *gin.Context) {
	site, slug := c.Param("site"), c.Param("slug")
	h.cached(c, cache.Key(site, "project", slug), func() (interface{}, error) {
		return h.store.GetProjectBySlug(c.Request.Context(), site, slug)
	})
}

func (h *Handler) UpsertProject(c *gin.Context) {
	site := c.Param("site")

	var project models.ProjectModel
	if err := c.ShouldBindJSON(&project); err != nil {
		response.BadRequest(c, "invalid project payload: "+err.Error())
		return
	}
	project.Slug = c.Param("slug")

	saved, err := h.store.UpsertProject(c.Request.Context(), site, &project)
	if err != nil {
		response.WriteFailed(c, err)
		return
	}
	h.cache.InvalidateSite(c.Request.Context(), site)
	response.OK(c, saved)
}

func (h *Handler) GetNavigation(c *gin.Context) {
	site := c.Param("site")
	items, err := h.store.GetNavigation(c.Request.Context(), site)
	if err != nil {
		response.ReadFailed(c, err)
		return
	}
	if items == nil {
		items = []models.NavigationItemModel{}
	}
	response.OK(c, items)
}

func (h *Handler) SetNavigation(c *gin.Context) {
	site := c.Param("site")

	var items []models.NavigationItemModel
	if err := c.ShouldBindJSON(&items); err != nil {
		response.BadRequest(c, "invalid navigation payload: "+err.Error())
		return
	}

	if err := h.store.SetNavigation(c.Request.Context(), site, items); err != nil {
		response.WriteFailed(c, err)
		return
	}
	h.cache.InvalidateSite(c.Request.Context(), site)
	response.NoContent(c)
}

func (h *Handler) GetFooter(c *gin.Context) {
	site := c.Param("site")
	h.cached(c, cache.Key(site, "footer"), func() (interface{}, error) {
		return h.store.GetFooter(c.Request.Context(), site)
	})
}

func (h *Handler) SetFooter(c *gin.Context) {
	site := c.Param("site")

	var footer models.FooterModel
	if err := c.ShouldBindJSON(&footer); err != nil {
		response.BadRequest(c, "invalid footer payload: "+err.Error())
		return
	}

	if err := h.store.SetFooter(c.Request.Context(), site, &footer); err != nil {
		response.WriteFailed(c, err)
		return
	}
	h.cache.InvalidateSite(c.Request.Context(), site)
	response.NoContent(c)
}

// Sync applies a whole-site document in one request. Per-record
// failures are tallied, not fatal, so the response always reports the
// full outcome.
func (h *Handler) Sync(c *gin.Context) {
	site := c.Param("site")

	var doc models.SiteDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.BadRequest(c, "invalid document payload: "+err.Error())
		return
	}

	result, err := h.store.SyncDocument(c.Request.Context(), site, &doc)
	if err != nil {
		response.WriteFailed(c, err)
		return
	}

	h.cache.InvalidateSite(c.Request.Context(), site)
	h.log.Info("document sync applied",
		zap.String("site", site),
		zap.Int("pagesSucceeded", result.Pages.Succeeded),
		zap.Int("pagesFailed", result.Pages.Failed),
		zap.Int("articlesSucceeded", result.Articles.Succeeded),
		zap.Int("articlesFailed", result.Articles.Failed),
		zap.Int("projectsSucceeded", result.Projects.Succeeded),
		zap.Int("projectsFailed", result.Projects.Failed),
	)
	response.OK(c, result)
}
