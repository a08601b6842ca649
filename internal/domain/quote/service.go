package quote

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

type ExportSource string

const (
	SourceSaved    ExportSource = "saved"
	SourceExisting ExportSource = "existing"
	SourceUnsaved  ExportSource = "unsaved"
)

const (
	msgConflict      = "Quotation number already exists. Please use a unique number."
	msgUnsavedExport = "PDF generated successfully, but there was an issue saving to database. Please try saving manually."

	msgExistingUnavailable = "PDF generated from your entry. This quotation number is already taken and the saved copy could not be loaded."
)

type ExportOptions struct {
	// ResolveExistingOnConflict renders the already stored record when the
	// quotation number is taken, instead of failing the export.
	ResolveExistingOnConflict bool
}

type ExportResult struct {
	Quote    Quote
	Document Document
	Saved    bool
	Source   ExportSource
	Warning  string
}

type StatusUpdate struct {
	Status      string `json:"status"`
	DeliveredOn string `json:"deliveredOn"`
}

type Service struct {
	store    Store
	renderer Renderer
	cache    SuggestionCache
	observer ExportObserver
	log      *logger.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c SuggestionCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithObserver(o ExportObserver) Option {
	return func(s *Service) { s.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, renderer Renderer, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store:    store,
		renderer: renderer,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Quote, error) {
	quotes, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "Failed to fetch quotations.")
	}
	return quotes, nil
}

func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return Quote{}, storeError(err, "Failed to fetch quotation.")
	}
	return q, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	quotes, err := s.List(ctx, ListFilter{})
	if err != nil {
		return Stats{}, err
	}
	return Summarize(quotes), nil
}

func (s *Service) NextNumber(ctx context.Context) (int64, error) {
	numbers, err := s.store.Numbers(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, "Failed to fetch existing quotations.")
	}
	return NextNumber(numbers), nil
}

// Create validates the input and stores it. An empty quotation number is
// filled with the next suggested number.
func (s *Service) Create(ctx context.Context, in Input) (Quote, error) {
	q, err := Build(in, s.now())
	if err != nil {
		return Quote{}, err
	}
	if q.Number == "" {
		next, err := s.NextNumber(ctx)
		if err != nil {
			return Quote{}, err
		}
		q.Number = strconv.FormatInt(next, 10)
	}

	created, err := s.store.Create(ctx, q)
	if err != nil {
		return Quote{}, storeError(err, "Failed to create quotation. Please try again.")
	}
	s.invalidate(ctx)
	return created, nil
}

// Replace overwrites the full content of a stored quotation.
func (s *Service) Replace(ctx context.Context, id string, in Input) (Quote, error) {
	q, err := Build(in, s.now())
	if err != nil {
		return Quote{}, err
	}
	if q.Number == "" {
		current, err := s.Get(ctx, id)
		if err != nil {
			return Quote{}, err
		}
		q.Number = current.Number
	}

	updated, err := s.store.Replace(ctx, id, q)
	if err != nil {
		return Quote{}, storeError(err, "Failed to update quotation.")
	}
	s.invalidate(ctx)
	return updated, nil
}

// SetStatus changes only status and delivery date. The delivery date is
// cleared for any status other than Delivered and defaults to today for it.
func (s *Service) SetStatus(ctx context.Context, id string, upd StatusUpdate) (Quote, error) {
	status := Status(strings.TrimSpace(upd.Status))
	if !status.Valid() {
		return Quote{}, apperrors.New(apperrors.CodeValidation, "Invalid status value.")
	}

	var deliveredOn *time.Time
	if status == StatusDelivered {
		d, err := parseDate(upd.DeliveredOn, s.now())
		if err != nil {
			return Quote{}, apperrors.Wrap(apperrors.CodeValidation, err, "Delivered date must be a valid date.")
		}
		deliveredOn = &d
	}

	q, err := s.store.UpdateStatus(ctx, id, status, deliveredOn)
	if err != nil {
		return Quote{}, storeError(err, "Failed to update quotation status.")
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(err, "Failed to delete quotation.")
	}
	s.invalidate(ctx)
	return nil
}

// Suggestions lists distinct item categories or descriptions containing
// search, case-insensitively. kind is "categories" or "descriptions".
func (s *Service) Suggestions(ctx context.Context, kind, search string) ([]string, error) {
	var field ItemField
	switch kind {
	case "categories":
		field = FieldCategory
	case "descriptions":
		field = FieldDescription
	default:
		return nil, apperrors.New(apperrors.CodeValidation, `Invalid type parameter. Use "categories" or "descriptions".`)
	}
	search = strings.TrimSpace(search)

	if s.cache != nil {
		if values, ok := s.cache.Get(ctx, field, search); ok {
			return values, nil
		}
	}

	values, err := s.store.DistinctItemValues(ctx, field, search)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "Failed to fetch items.")
	}
	if values == nil {
		values = []string{}
	}
	if s.cache != nil {
		s.cache.Set(ctx, field, search, values)
	}
	return values, nil
}

// Render produces the document for a stored quotation.
func (s *Service) Render(ctx context.Context, id string) (Document, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.renderer.Generate(q)
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.CodeInternal, err, "Unable to generate the PDF right now.")
	}
	return doc, nil
}

// Export validates the input, tries to store it and renders a document.
//
// Validation failures stop before anything is stored or rendered. A taken
// quotation number renders the stored record when
// opts.ResolveExistingOnConflict is set and fails otherwise; if the stored
// record cannot be loaded the local one is rendered as unsaved. Any other
// store failure still renders the local record and reports Saved=false.
func (s *Service) Export(ctx context.Context, in Input, opts ExportOptions) (ExportResult, error) {
	local, err := Build(in, s.now())
	if err != nil {
		return ExportResult{}, err
	}
	if local.Number == "" {
		next, err := s.NextNumber(ctx)
		if err != nil {
			s.log.WarnErr(ctx, "quote.export.next_number_failed", err)
			next = MinNumber
		}
		local.Number = strconv.FormatInt(next, 10)
	}

	res := ExportResult{Quote: local}
	created, err := s.store.Create(ctx, local)
	switch {
	case err == nil:
		res.Quote, res.Saved, res.Source = created, true, SourceSaved
	case errors.Is(err, ErrConflict) && opts.ResolveExistingOnConflict:
		existing, ferr := s.store.GetByNumber(ctx, local.Number)
		if ferr != nil {
			s.log.WarnErr(s.log.WithField(ctx, "quotation_number", local.Number), "quote.export.existing_lookup_failed", ferr)
			res.Source, res.Warning = SourceUnsaved, msgExistingUnavailable
			break
		}
		res.Quote, res.Saved, res.Source = existing, true, SourceExisting
		s.log.Info(s.log.WithField(ctx, "quotation_number", local.Number), "quote.export.already_exists")
	case errors.Is(err, ErrConflict):
		return ExportResult{}, apperrors.Wrap(apperrors.CodeConflict, err, msgConflict)
	default:
		s.log.Error(s.log.WithField(ctx, "quotation_number", local.Number), "quote.export.save_failed", err)
		res.Source, res.Warning = SourceUnsaved, msgUnsavedExport
	}
	if len(res.Quote.Items) == 0 {
		res.Quote.Items = local.Items
	}

	doc, err := s.renderer.Generate(res.Quote)
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "Unable to generate the PDF right now. Please try again shortly.")
	}
	res.Document = doc

	if res.Source == SourceSaved {
		s.invalidate(ctx)
	}
	if s.observer != nil {
		s.observer.ObserveExport(res.Source)
	}
	return res, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, err, "Quotation not found.")
	case errors.Is(err, ErrConflict):
		return apperrors.Wrap(apperrors.CodeConflict, err, msgConflict)
	}
	return apperrors.Wrap(apperrors.CodeDependency, err, msg)
}
