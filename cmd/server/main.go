package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/config"
	"github.com/BuzzBrady/quotecraft/internal/db"
	"github.com/BuzzBrady/quotecraft/internal/migrations"
	"github.com/BuzzBrady/quotecraft/internal/observability"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
	"github.com/BuzzBrady/quotecraft/internal/seed"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	auth    *authService
	db      *sql.DB
	catalog *catalog.Store
	quotes  *quotes.Repo
	builder quotes.Builder
	cfg     config.Config
	logger  *zap.Logger
	now     func() time.Time
}

func newServer(database *sql.DB, cfg config.Config, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{
		auth:    newAuthService(database, cfg.SessionSecret),
		db:      database,
		catalog: catalog.NewStore(database),
		quotes:  quotes.NewRepo(database),
		builder: quotes.Builder{OnResolve: observability.ObserveResolution},
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts))

	srv := newServer(database, cfg, logger)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("env", cfg.Env))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("graceful shutdown complete")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/catalog", s.handleCatalog)
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleSaveTask)
			r.Put("/{id}", s.handleSaveTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})
		r.Route("/materials", func(r chi.Router) {
			r.Post("/", s.handleSaveMaterial)
			r.Put("/{id}", s.handleSaveMaterial)
			r.Delete("/{id}", s.handleDeleteMaterial)
		})
		r.Route("/areas", func(r chi.Router) {
			r.Post("/", s.handleSaveArea)
			r.Put("/{id}", s.handleSaveArea)
			r.Delete("/{id}", s.handleDeleteArea)
		})
		r.Route("/rates", func(r chi.Router) {
			r.Post("/", s.handleSaveRate)
			r.Put("/{id}", s.handleSaveRate)
			r.Delete("/{id}", s.handleDeleteRate)
		})
		r.Route("/kits", func(r chi.Router) {
			r.Post("/", s.handleSaveKit)
			r.Put("/{id}", s.handleSaveKit)
			r.Delete("/{id}", s.handleDeleteKit)
		})

		r.Post("/pricing/preview", s.handlePricingPreview)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", s.handleQuotesList)
			r.Post("/", s.handleQuoteCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleQuoteGet)
				r.Put("/", s.handleQuoteUpdate)
				r.Delete("/", s.handleQuoteDelete)
				r.Post("/status", s.handleQuoteStatus)
				r.Post("/kits", s.handleQuoteApplyKit)
				r.Get("/pdf", s.handleQuotePDF)
				r.Get("/xlsx", s.handleQuoteXLSX)
			})
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
