package quote

import (
	"context"
	"time"
)

type ItemField string

const (
	FieldCategory    ItemField = "category"
	FieldDescription ItemField = "description"
)

type ListFilter struct {
	Status    Status // empty means all
	Ascending bool   // by creation time; newest first otherwise
}

// Store persists quotations. Implementations return ErrNotFound for unknown
// ids and ErrConflict when a quotation number is already taken.
type Store interface {
	List(ctx context.Context, f ListFilter) ([]Quote, error)
	Get(ctx context.Context, id string) (Quote, error)
	GetByNumber(ctx context.Context, number string) (Quote, error)
	Numbers(ctx context.Context) ([]string, error)
	Create(ctx context.Context, q Quote) (Quote, error)
	Replace(ctx context.Context, id string, q Quote) (Quote, error)
	UpdateStatus(ctx context.Context, id string, status Status, deliveredOn *time.Time) (Quote, error)
	Delete(ctx context.Context, id string) error
	DistinctItemValues(ctx context.Context, field ItemField, search string) ([]string, error)
}

// Document is a rendered quotation ready for download.
type Document struct {
	Filename string
	Data     []byte
	Pages    int
}

type Renderer interface {
	Generate(q Quote) (Document, error)
}

// SuggestionCache memoizes autocomplete lookups. Invalidate is called after
// every write that can change item values.
type SuggestionCache interface {
	Get(ctx context.Context, field ItemField, search string) ([]string, bool)
	Set(ctx context.Context, field ItemField, search string, values []string)
	Invalidate(ctx context.Context)
}

// ExportObserver is told how each export resolved its source record.
type ExportObserver interface {
	ObserveExport(source ExportSource)
}
