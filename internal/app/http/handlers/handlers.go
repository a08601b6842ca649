package handlers

import (
	"context"
	"time"

	"valour-interiors/quotes_backend/internal/domain/auth"
	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

type QuoteService interface {
	List(ctx context.Context, f quote.ListFilter) ([]quote.Quote, error)
	Get(ctx context.Context, id string) (quote.Quote, error)
	Stats(ctx context.Context) (quote.Stats, error)
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, in quote.Input) (quote.Quote, error)
	Replace(ctx context.Context, id string, in quote.Input) (quote.Quote, error)
	SetStatus(ctx context.Context, id string, upd quote.StatusUpdate) (quote.Quote, error)
	Delete(ctx context.Context, id string) error
	Suggestions(ctx context.Context, kind, search string) ([]string, error)
	Render(ctx context.Context, id string) (quote.Document, error)
	Export(ctx context.Context, in quote.Input, opts quote.ExportOptions) (quote.ExportResult, error)
}

type AuthService interface {
	Login(ctx context.Context, name, password string) (auth.Session, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Quotes     QuoteService
	Auth       AuthService
	DB         Pinger
	ExportOpts quote.ExportOptions
	Log        *logger.Logger

	now func() time.Time
}

func New(quotes QuoteService, authSvc AuthService, db Pinger, export quote.ExportOptions, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		Quotes:     quotes,
		Auth:       authSvc,
		DB:         db,
		ExportOpts: export,
		Log:        log,
		now:        time.Now,
	}
}
