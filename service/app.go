package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"blogsite/app/cache"
	"blogsite/app/config"
	"blogsite/app/controllers"
	"blogsite/app/jobs"
	"blogsite/app/mailer"
	"blogsite/app/metrics"
	"blogsite/app/repositories"
	"blogsite/app/repositories/postgres"
	"blogsite/app/routes"
	"blogsite/app/services"
	"blogsite/app/views"

	"github.com/rs/zerolog/log"
)

// App is the wired blog: store, services, background jobs and router.
type App struct {
	cfg       *config.Config
	store     *repositories.Store
	posts     *services.PostService
	sitemaps  *services.SitemapService
	scheduler *jobs.Scheduler
	poolStats *metrics.PoolStatsCollector
	handler   http.Handler
}

// NewApp opens the configured store and builds everything on top of it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Blog.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Blog.Timezone, err)
	}

	app := &App{cfg: cfg}
	health, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		app.Close()
		return nil, err
	}
	sender, err := mailer.New(cfg.Mail)
	if err != nil {
		app.Close()
		return nil, err
	}
	templates, err := views.Load(loc)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.posts = services.NewPostService(app.store, c, services.NewLanguageDetector(), services.Settings{
		PageSize:     cfg.Blog.PageSize,
		SimilarPosts: cfg.Blog.SimilarPosts,
		Location:     loc,
		SearchConfig: cfg.Search.Config,
		Thresholds:   cfg.Search.Thresholds,
	})
	share := services.NewShareService(app.store.Posts, sender, cfg.Mail.From, loc)
	comments := services.NewCommentService(app.store.Comments, app.store.Posts, cfg.Comments.AutoActivate)
	tags := services.NewTagService(app.store.Tags, c)
	app.sitemaps = services.NewSitemapService(app.store.Posts, app.store.Tags, cfg.Server.BaseURL, loc)
	app.posts.SetSitemap(app.sitemaps)
	tags.SetSitemap(app.sitemaps)

	app.scheduler, err = jobs.New(cfg.Jobs.SitemapRefresh, app.sitemaps)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.handler = routes.SetupRoutes(routes.Controllers{
		Posts:    controllers.NewPostController(app.posts, share, templates, cfg.Server.BaseURL),
		Comments: controllers.NewCommentController(comments, templates, loc),
		Tags:     controllers.NewTagController(tags),
		Sitemap:  controllers.NewSitemapController(app.sitemaps),
		Health:   controllers.Health(health),
	})
	return app, nil
}

func (a *App) openStore(ctx context.Context) (controllers.Pinger, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, a.cfg.Store.Postgres.DSN, a.cfg.Store.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		a.store = postgres.NewStore(pool)
		a.poolStats = metrics.NewPoolStatsCollector(pool)
		return pool, nil
	default:
		db, err := repositories.OpenBadger(a.cfg.Store.Badger.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger database: %w", err)
		}
		a.store = repositories.NewBadgerStore(db)
		return controllers.PingFunc(func(context.Context) error {
			if db.IsClosed() {
				return errors.New("badger database is closed")
			}
			return nil
		}), nil
	}
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Reload applies the settings that may change while running.
func (a *App) Reload(cfg *config.Config) {
	a.posts.SetSearchThresholds(cfg.Search.Thresholds)
	log.Info().
		Float64("min_rank", cfg.Search.MinRank).
		Float64("min_similarity", cfg.Search.MinSimilarity).
		Msg("Search thresholds updated")
}

// Start launches the background jobs.
func (a *App) Start() {
	if a.poolStats != nil {
		a.poolStats.Start(15 * time.Second)
	}
	a.scheduler.Start()
	go jobs.RefreshSitemap(a.sitemaps)
}

// Stop halts the background jobs, waiting at most until ctx is done.
func (a *App) Stop(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if a.poolStats != nil {
		a.poolStats.Stop()
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// RunAppServer serves the blog until SIGINT or SIGTERM.
func RunAppServer(args []string) int {
	v, cfg, err := loadConfig()
	if err != nil {
		failure("Failed to load settings: %v", err)
		return 1
	}
	printBanner()

	if len(args) > 0 && args[0] != "" {
		cfg.Server.Addr = args[0]
	}

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when starting the blog.")
		return 1
	}
	defer app.Close()

	config.Watch(v, app.Reload)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, app, cfg.Server)
}

// serve runs the HTTP server and the background jobs until ctx is done, then
// shuts both down within the configured timeout.
func serve(ctx context.Context, app *App, cfg config.ServerConfig) int {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	app.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("Blog is listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error")
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		code = 1
	}
	app.Stop(shutdownCtx)
	return code
}
