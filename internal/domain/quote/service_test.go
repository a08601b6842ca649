package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

type fakeStore struct {
	mu        sync.Mutex
	quotes    map[string]Quote
	createErr error
	calls     []string
	seq       int
}

func newFakeStore(existing ...Quote) *fakeStore {
	s := &fakeStore{quotes: map[string]Quote{}}
	for _, q := range existing {
		s.quotes[q.ID] = q
	}
	return s
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeStore) List(ctx context.Context, f ListFilter) ([]Quote, error) {
	s.record("List")
	var out []Quote
	for _, q := range s.quotes {
		if f.Status == "" || q.Status == f.Status {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (Quote, error) {
	s.record("Get")
	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (s *fakeStore) GetByNumber(ctx context.Context, number string) (Quote, error) {
	s.record("GetByNumber")
	for _, q := range s.quotes {
		if q.Number == number {
			return q, nil
		}
	}
	return Quote{}, ErrNotFound
}

func (s *fakeStore) Numbers(ctx context.Context) ([]string, error) {
	s.record("Numbers")
	var out []string
	for _, q := range s.quotes {
		out = append(out, q.Number)
	}
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, q Quote) (Quote, error) {
	s.record("Create")
	if s.createErr != nil {
		return Quote{}, s.createErr
	}
	for _, existing := range s.quotes {
		if existing.Number == q.Number {
			return Quote{}, ErrConflict
		}
	}
	s.seq++
	q.ID = "q" + strings.Repeat("x", s.seq)
	s.quotes[q.ID] = q
	return q, nil
}

func (s *fakeStore) Replace(ctx context.Context, id string, q Quote) (Quote, error) {
	s.record("Replace")
	if _, ok := s.quotes[id]; !ok {
		return Quote{}, ErrNotFound
	}
	q.ID = id
	s.quotes[id] = q
	return q, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id string, status Status, deliveredOn *time.Time) (Quote, error) {
	s.record("UpdateStatus")
	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	q.Status, q.DeliveredOn = status, deliveredOn
	s.quotes[id] = q
	return q, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.record("Delete")
	if _, ok := s.quotes[id]; !ok {
		return ErrNotFound
	}
	delete(s.quotes, id)
	return nil
}

func (s *fakeStore) DistinctItemValues(ctx context.Context, field ItemField, search string) ([]string, error) {
	s.record("DistinctItemValues")
	return []string{"Kitchen", "Living"}, nil
}

type fakeRenderer struct {
	rendered []Quote
	err      error
}

func (r *fakeRenderer) Generate(q Quote) (Document, error) {
	if r.err != nil {
		return Document{}, r.err
	}
	r.rendered = append(r.rendered, q)
	return Document{Filename: "Quotation_" + q.Customer.Name + ".pdf", Data: []byte("%PDF-1.3"), Pages: 1}, nil
}

type fakeCache struct {
	values      map[string][]string
	invalidated int
}

func (c *fakeCache) key(field ItemField, search string) string {
	return string(field) + "|" + search
}

func (c *fakeCache) Get(ctx context.Context, field ItemField, search string) ([]string, bool) {
	v, ok := c.values[c.key(field, search)]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, field ItemField, search string, values []string) {
	if c.values == nil {
		c.values = map[string][]string{}
	}
	c.values[c.key(field, search)] = values
}

func (c *fakeCache) Invalidate(ctx context.Context) {
	c.values = nil
	c.invalidated++
}

type fakeObserver struct {
	sources []ExportSource
}

func (o *fakeObserver) ObserveExport(source ExportSource) {
	o.sources = append(o.sources, source)
}

var serviceNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store Store, r Renderer, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return serviceNow })}, opts...)
	return NewService(store, r, nil, opts...)
}

func exportInput(number string) Input {
	return Input{
		QuotationNumber: number,
		Customer:        Customer{Name: "Asha"},
		Items:           []ItemInput{{Category: "Kitchen", Description: "Cabinets", Quantity: 1, UnitPrice: 1000}},
		TaxRate:         18,
		ValidityDays:    30,
	}
}

func TestExportSaves(t *testing.T) {
	store := newFakeStore()
	renderer := &fakeRenderer{}
	cache := &fakeCache{}
	obs := &fakeObserver{}
	svc := newTestService(store, renderer, WithCache(cache), WithObserver(obs))

	res, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{ResolveExistingOnConflict: true})
	require.NoError(t, err)

	assert.True(t, res.Saved)
	assert.Equal(t, SourceSaved, res.Source)
	assert.Empty(t, res.Warning)
	assert.NotEmpty(t, res.Quote.ID)
	assert.InDelta(t, 1180, res.Quote.Amount, 1e-9)
	assert.Equal(t, []byte("%PDF-1.3"), res.Document.Data)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, []ExportSource{SourceSaved}, obs.sources)
}

func TestExportValidationStopsEarly(t *testing.T) {
	store := newFakeStore()
	renderer := &fakeRenderer{}
	svc := newTestService(store, renderer)

	in := exportInput("1001")
	in.Items[0].Description = " "
	_, err := svc.Export(context.Background(), in, ExportOptions{})

	require.Error(t, err)
	assert.Equal(t, msgDescription, apperrors.As(err).Message())
	assert.Empty(t, store.calls)
	assert.Empty(t, renderer.rendered)
}

func TestExportConflictResolvesExisting(t *testing.T) {
	existing := Quote{ID: "stored", Number: "1001", Customer: Customer{Name: "Stored Customer"},
		Items: []Item{{Category: "Bath", Description: "Vanity", Quantity: 1, UnitPrice: 5000}}}
	store := newFakeStore(existing)
	renderer := &fakeRenderer{}
	cache := &fakeCache{}
	obs := &fakeObserver{}
	svc := newTestService(store, renderer, WithCache(cache), WithObserver(obs))

	res, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{ResolveExistingOnConflict: true})
	require.NoError(t, err)

	assert.True(t, res.Saved)
	assert.Equal(t, SourceExisting, res.Source)
	assert.Equal(t, "stored", res.Quote.ID)
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "Stored Customer", renderer.rendered[0].Customer.Name)
	assert.Zero(t, cache.invalidated)
	assert.Equal(t, []ExportSource{SourceExisting}, obs.sources)
}

func TestExportConflictWithUnavailableExisting(t *testing.T) {
	store := newFakeStore()
	store.createErr = fmt.Errorf("%w: insert 1001", ErrConflict)
	renderer := &fakeRenderer{}
	cache := &fakeCache{}
	obs := &fakeObserver{}
	svc := newTestService(store, renderer, WithCache(cache), WithObserver(obs))

	res, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{ResolveExistingOnConflict: true})
	require.NoError(t, err)

	assert.False(t, res.Saved)
	assert.Equal(t, SourceUnsaved, res.Source)
	assert.Equal(t, msgExistingUnavailable, res.Warning)
	assert.Empty(t, res.Quote.ID)
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "Asha", renderer.rendered[0].Customer.Name)
	assert.Contains(t, store.calls, "GetByNumber")
	assert.Zero(t, cache.invalidated)
	assert.Equal(t, []ExportSource{SourceUnsaved}, obs.sources)
}

func TestExportConflictFailsWithoutResolution(t *testing.T) {
	store := newFakeStore(Quote{ID: "stored", Number: "1001"})
	renderer := &fakeRenderer{}
	svc := newTestService(store, renderer)

	_, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, msgConflict, apperrors.As(err).Message())
	assert.Empty(t, renderer.rendered)
}

func TestExportRendersWhenStoreFails(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset")
	renderer := &fakeRenderer{}
	obs := &fakeObserver{}
	svc := newTestService(store, renderer, WithObserver(obs))

	res, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{ResolveExistingOnConflict: true})
	require.NoError(t, err)

	assert.False(t, res.Saved)
	assert.Equal(t, SourceUnsaved, res.Source)
	assert.Equal(t, msgUnsavedExport, res.Warning)
	assert.Equal(t, "Asha", res.Quote.Customer.Name)
	assert.Len(t, renderer.rendered, 1)
	assert.Equal(t, []ExportSource{SourceUnsaved}, obs.sources)
}

func TestExportRendererFailure(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeRenderer{err: errors.New("boom")})

	_, err := svc.Export(context.Background(), exportInput("1001"), ExportOptions{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

func TestExportFillsNumber(t *testing.T) {
	store := newFakeStore(Quote{ID: "a", Number: "1041"})
	svc := newTestService(store, &fakeRenderer{})

	res, err := svc.Export(context.Background(), exportInput(""), ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1042", res.Quote.Number)
}

func TestCreateAndReplace(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	svc := newTestService(store, &fakeRenderer{}, WithCache(cache))
	ctx := context.Background()

	created, err := svc.Create(ctx, exportInput(""))
	require.NoError(t, err)
	assert.Equal(t, "1000", created.Number)

	_, err = svc.Create(ctx, exportInput("1000"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	in := exportInput("")
	in.Customer.Name = "Asha Menon"
	replaced, err := svc.Replace(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "1000", replaced.Number)
	assert.Equal(t, "Asha Menon", replaced.Customer.Name)
	assert.Equal(t, 2, cache.invalidated)

	_, err = svc.Replace(ctx, "missing", exportInput("7"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSetStatus(t *testing.T) {
	delivered := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(Quote{ID: "a", Number: "1000", Status: StatusDelivered, DeliveredOn: &delivered})
	svc := newTestService(store, &fakeRenderer{})
	ctx := context.Background()

	q, err := svc.SetStatus(ctx, "a", StatusUpdate{Status: "Sent", DeliveredOn: "2024-05-02"})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, q.Status)
	assert.Nil(t, q.DeliveredOn)

	q, err = svc.SetStatus(ctx, "a", StatusUpdate{Status: "Delivered"})
	require.NoError(t, err)
	require.NotNil(t, q.DeliveredOn)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *q.DeliveredOn)

	_, err = svc.SetStatus(ctx, "a", StatusUpdate{Status: "Archived"})
	assert.Equal(t, "Invalid status value.", apperrors.As(err).Message())

	_, err = svc.SetStatus(ctx, "missing", StatusUpdate{Status: "Sent"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDelete(t *testing.T) {
	store := newFakeStore(Quote{ID: "a", Number: "1000"})
	svc := newTestService(store, &fakeRenderer{})

	require.NoError(t, svc.Delete(context.Background(), "a"))
	err := svc.Delete(context.Background(), "a")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSuggestions(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	svc := newTestService(store, &fakeRenderer{}, WithCache(cache))
	ctx := context.Background()

	got, err := svc.Suggestions(ctx, "categories", " kit ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Living"}, got)

	got, err = svc.Suggestions(ctx, "categories", "kit")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Living"}, got)

	lookups := 0
	for _, c := range store.calls {
		if c == "DistinctItemValues" {
			lookups++
		}
	}
	assert.Equal(t, 1, lookups, "second lookup served from cache")

	_, err = svc.Suggestions(ctx, "rooms", "")
	require.Error(t, err)
	assert.Equal(t, `Invalid type parameter. Use "categories" or "descriptions".`, apperrors.As(err).Message())
}

func TestRender(t *testing.T) {
	store := newFakeStore(Quote{ID: "a", Number: "1000", Customer: Customer{Name: "Asha"}})
	svc := newTestService(store, &fakeRenderer{})

	doc, err := svc.Render(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Quotation_Asha.pdf", doc.Filename)

	_, err = svc.Render(context.Background(), "b")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestStats(t *testing.T) {
	store := newFakeStore(
		Quote{ID: "a", Status: StatusSent, Amount: 100},
		Quote{ID: "b", Status: StatusDelivered, Amount: 200},
	)
	svc := newTestService(store, &fakeRenderer{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Sent: 1, Delivered: 1, TotalValue: 300}, st)
}
