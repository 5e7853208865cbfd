// Go Maps Tutor server
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/api"
	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/config"
	"github.com/ashureev/gomaps-tutor/internal/fragment"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
	"github.com/ashureev/gomaps-tutor/internal/identity"
	"github.com/ashureev/gomaps-tutor/internal/middleware"
	"github.com/ashureev/gomaps-tutor/internal/notify"
	"github.com/ashureev/gomaps-tutor/internal/page"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
	"github.com/ashureev/gomaps-tutor/internal/store"
	"github.com/ashureev/gomaps-tutor/internal/stream"
	"github.com/ashureev/gomaps-tutor/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if pruned, err := repo.PruneAttempts(context.Background(), cfg.AttemptRetention); err != nil {
		slog.Warn("Failed to prune old attempts", "error", err)
	} else {
		slog.Info("Attempt log pruned", "deleted", pruned, "retention", cfg.AttemptRetention)
	}

	content := web.ContentFS()
	catalog, err := loadCatalog(content, cfg.Content.CatalogPath)
	if err != nil {
		slog.Error("Failed to load quiz catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Quiz catalog loaded", "quizzes", len(catalog.Quizzes), "map_quizzes", len(catalog.MapQuizzes), "components", len(catalog.Components))

	fetcher, err := newFetcher(cfg, content)
	if err != nil {
		slog.Error("Failed to initialize fragment fetcher", "error", err)
		os.Exit(1)
	}

	highlighter := highlight.NewChroma(cfg.Content.HighlightStyle)
	grader := checker.Default()
	pages := page.NewManager(page.Deps{
		Loader: fragment.NewLoader(fetcher,
			fragment.WithHighlighter(highlighter),
			fragment.WithReloadParallelism(cfg.Content.ReloadParallelism),
		),
		Grader:      grader,
		Catalog:     catalog,
		Highlighter: highlighter,
		Notify: notify.Options{
			ShowDelay: cfg.Notify.ShowDelay,
			Display:   cfg.Notify.Display,
			FadeOut:   cfg.Notify.FadeOut,
		},
		Recorder: repo,
	})

	sockets := stream.NewSessionManager()
	limiter := api.NewRateLimiter(cfg.Limit.Requests, cfg.Limit.Window)
	defer limiter.Stop()

	apiHandler := api.NewHandler(pages, repo, grader, catalog, sockets, limiter)
	healthHandler := api.NewHealthHandler(repo, pages)
	streamHandler := stream.NewHandler(pages, sockets,
		stream.WithRetry(cfg.Stream.Retry),
		stream.WithKeepalive(cfg.Stream.Keepalive),
		stream.WithOrigin(cfg.FrontendURL, cfg.IsDevelopment()),
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/fragments/*", web.ContentHandler(content))
	r.Handle("/styles/*", web.ContentHandler(content))
	r.Handle("/highlight.css", highlighter.CSSHandler())

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		apiHandler.RegisterRoutes(r)
		r.Get("/api/notifications/stream", streamHandler.ServeSSE)
		r.Get("/ws/notifications", streamHandler.ServeWebSocket)
	})

	r.Handle("/*", web.SPAHandler())

	// SSE connections require no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page.StartSweeper(ctx, pages, cfg.Session.TTL, cfg.Session.SweepInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// loadCatalog reads the catalog from path when set, otherwise from the
// embedded content.
func loadCatalog(content fs.FS, path string) (*quiz.Catalog, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		return quiz.LoadCatalog(f)
	}
	f, err := content.Open(web.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	defer f.Close()
	return quiz.LoadCatalog(f)
}

// newFetcher fetches over HTTP when a content base URL is configured and
// from the embedded content otherwise, behind a TTL cache.
func newFetcher(cfg *config.Config, content fs.FS) (fragment.Fetcher, error) {
	var next fragment.Fetcher = fragment.NewFSFetcher(content)
	if cfg.Content.BaseURL != "" {
		opts := []fragment.HTTPOption{
			fragment.WithHTTPClient(&http.Client{Timeout: cfg.Content.FetchTimeout}),
		}
		if cfg.Content.StrictStatus {
			opts = append(opts, fragment.WithStrictStatus())
		}
		hf, err := fragment.NewHTTPFetcher(cfg.Content.BaseURL+"/", opts...)
		if err != nil {
			return nil, err
		}
		next = hf
		slog.Info("Fetching fragments over HTTP", "base_url", cfg.Content.BaseURL, "strict_status", cfg.Content.StrictStatus)
	}
	if cfg.Content.CacheTTL <= 0 {
		return next, nil
	}
	return fragment.NewCachedFetcher(next, cfg.Content.CacheTTL), nil
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
