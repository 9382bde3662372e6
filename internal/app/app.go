// Package app wires configuration, storage backends, the mode-aware
// repository and the HTTP router into a runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atelier-studio/core/internal/config"
	"github.com/atelier-studio/core/internal/database"
	"github.com/atelier-studio/core/internal/middleware"
	"github.com/atelier-studio/core/internal/modules/content"
	"github.com/atelier-studio/core/internal/pkg/cache"
	"github.com/atelier-studio/core/internal/pkg/response"
	"github.com/atelier-studio/core/internal/store"
)

// App owns the HTTP server and its backing resources.
type App struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	engine *gin.Engine
	cache  *cache.Client
	repo   *store.Repository
}

// New builds the application: only the backends the configured storage
// mode actually routes to are opened.
func New(cfg *config.AppConfig, log *zap.Logger) (*App, error) {
	mode, err := store.ParseMode(cfg.Storage.Mode)
	if err != nil {
		return nil, err
	}

	var rel store.ContentStore
	if cfg.NeedsDatabase() {
		db, err := database.Connect(cfg, true)
		if err != nil {
			return nil, err
		}
		rel = store.NewRelationalStore(db, log)
	}

	var doc store.ContentStore
	if cfg.NeedsDocumentStore() {
		doc = store.NewDocumentStore(cfg.Storage.ContentDir, cfg.Storage.DefaultSite, log)
	}

	repo, err := store.NewRepository(mode, rel, doc, log)
	if err != nil {
		return nil, err
	}

	var cacheClient *cache.Client
	if cfg.RedisURL != "" {
		cacheClient, err = cache.Connect(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", zap.Error(err))
			cacheClient = nil
		}
	}

	a := &App{cfg: cfg, log: log, cache: cacheClient, repo: repo}
	a.engine = a.buildRouter()

	log.Info("application initialized",
		zap.String("mode", string(mode)),
		zap.Bool("cache", cacheClient != nil),
	)
	return a, nil
}

func (a *App) buildRouter() *gin.Engine {
	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	response.SetVerbose(a.cfg.IsDev())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(a.log))

	corsConfig := cors.DefaultConfig()
	if len(a.cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = a.cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"mode":   string(a.repo.Mode()),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api/v1")
	content.NewHandler(a.repo, a.cache, a.log).Register(api)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	return r
}

// Router exposes the gin engine, mainly for tests.
func (a *App) Router() *gin.Engine { return a.engine }

// Addr is the listen address derived from configuration.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Shutdown releases resources that outlive a request.
func (a *App) Shutdown(ctx context.Context) error {
	return a.cache.Close()
}
