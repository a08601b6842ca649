package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"valour-interiors/quotes_backend/internal/app/config"
	apphttp "valour-interiors/quotes_backend/internal/app/http"
	"valour-interiors/quotes_backend/internal/app/http/handlers"
	"valour-interiors/quotes_backend/internal/app/metrics"
	"valour-interiors/quotes_backend/internal/domain/auth"
	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/pdf"
	pdfgen "valour-interiors/quotes_backend/internal/domain/quote/pdf/gofpdf"
	"valour-interiors/quotes_backend/internal/infra/cache"
	"valour-interiors/quotes_backend/internal/infra/db/postgres"
	"valour-interiors/quotes_backend/internal/infra/logo"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

const serviceName = "quotes_backend"

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Cfg      config.Config
	Log      *logger.Logger
	DB       *postgres.DB
	Cache    *cache.Suggestions
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Quotes   *quote.Service
	Auth     *auth.Service
}

func NewLogger(cfg config.Config) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
}

// New connects to the database and, when configured, Redis, and builds the
// domain services on top of them. The caller owns Close.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	db, err := postgres.New(ctx, postgres.Config{
		URL:      cfg.DB.URL,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		Log:      log,
		DB:       db,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	opts := []quote.Option{quote.WithObserver(a.Metrics)}
	if cfg.Redis.URL != "" {
		c, err := cache.New(ctx, cfg.Redis.URL, cfg.Redis.SuggestionTTL, log)
		if err != nil {
			// Suggestions still work straight from the database.
			log.WarnErr(ctx, "cache.disabled", err)
		} else {
			a.Cache = c
			opts = append(opts, quote.WithCache(c))
		}
	}

	mark := logo.Load(ctx, cfg.Company.LogoPath, log)
	var renderer pdf.Generator = pdfgen.New(cfg.Company.Letterhead(), mark, log)

	a.Quotes = quote.NewService(postgres.NewQuoteRepository(db), renderer, log, opts...)
	a.Auth = auth.NewService(postgres.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	return a, nil
}

func (a *App) Handler() http.Handler {
	h := handlers.New(a.Quotes, a.Auth, a.DB, quote.ExportOptions{
		ResolveExistingOnConflict: a.Cfg.Export.ResolveExistingOnConflict,
	}, a.Log)

	return apphttp.NewRouter(apphttp.RouterDeps{
		Handlers:    h,
		Verifier:    a.Auth,
		Metrics:     a.Metrics,
		Gatherer:    a.Registry,
		CORSOrigins: a.Cfg.HTTP.CORSOrigins,
		Log:         a.Log,
	})
}

// Serve runs the HTTP server until ctx is cancelled and then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: a.Cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info(a.Log.WithField(ctx, "addr", a.Cfg.HTTP.Addr), "http.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info(context.Background(), "http.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() error {
	var err error
	if a.Cache != nil {
		err = multierr.Append(err, a.Cache.Close())
	}
	if a.DB != nil {
		a.DB.Close()
	}
	return err
}

// Run wires everything from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) (err error) {
	log := NewLogger(cfg)

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()

	return a.Serve(ctx)
}
