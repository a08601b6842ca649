package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"valour-interiors/quotes_backend/internal/domain/quote"
)

const uniqueViolation = "23505"

const quoteColumns = `
	id, quotation_number, customer, project_name, items,
	tax_rate, validity_days, quotation_date, delivered_on,
	status, amount, notes, created_at, updated_at`

// QuoteRepository stores quotations with customer and items as JSONB.
type QuoteRepository struct {
	db *DB
}

func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) List(ctx context.Context, f quote.ListFilter) ([]quote.Quote, error) {
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	query := `SELECT ` + quoteColumns + `
		FROM quotations
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at ` + order

	rows, err := r.db.Pool.Query(ctx, query, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	quotes := []quote.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return quotes, nil
}

func (r *QuoteRepository) Get(ctx context.Context, id string) (quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotations WHERE id = $1`
	return r.one(ctx, query, id)
}

func (r *QuoteRepository) GetByNumber(ctx context.Context, number string) (quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotations WHERE quotation_number = $1`
	return r.one(ctx, query, number)
}

func (r *QuoteRepository) Numbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT quotation_number FROM quotations`)
	if err != nil {
		return nil, fmt.Errorf("list quotation numbers: %w", err)
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list quotation numbers: %w", err)
	}
	return numbers, nil
}

func (r *QuoteRepository) Create(ctx context.Context, q quote.Quote) (quote.Quote, error) {
	customer, items, err := encodeJSON(q)
	if err != nil {
		return quote.Quote{}, err
	}
	query := `
		INSERT INTO quotations
		    (id, quotation_number, customer, project_name, items,
		     tax_rate, validity_days, quotation_date, delivered_on,
		     status, amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + quoteColumns

	return r.one(ctx, query,
		uuid.NewString(),
		q.Number,
		customer,
		q.ProjectName,
		items,
		q.TaxRatePercent,
		q.ValidityDays,
		q.QuotationDate,
		q.DeliveredOn,
		string(q.Status),
		q.Amount,
		q.Notes,
	)
}

func (r *QuoteRepository) Replace(ctx context.Context, id string, q quote.Quote) (quote.Quote, error) {
	customer, items, err := encodeJSON(q)
	if err != nil {
		return quote.Quote{}, err
	}
	query := `
		UPDATE quotations
		SET quotation_number = $2,
		    customer         = $3,
		    project_name     = $4,
		    items            = $5,
		    tax_rate         = $6,
		    validity_days    = $7,
		    quotation_date   = $8,
		    delivered_on     = $9,
		    status           = $10,
		    amount           = $11,
		    notes            = $12,
		    updated_at       = NOW()
		WHERE id = $1
		RETURNING ` + quoteColumns

	return r.one(ctx, query,
		id,
		q.Number,
		customer,
		q.ProjectName,
		items,
		q.TaxRatePercent,
		q.ValidityDays,
		q.QuotationDate,
		q.DeliveredOn,
		string(q.Status),
		q.Amount,
		q.Notes,
	)
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id string, status quote.Status, deliveredOn *time.Time) (quote.Quote, error) {
	query := `
		UPDATE quotations
		SET status       = $2,
		    delivered_on = $3,
		    updated_at   = NOW()
		WHERE id = $1
		RETURNING ` + quoteColumns
	return r.one(ctx, query, id, string(status), deliveredOn)
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return quote.ErrNotFound
	}
	return nil
}

// DistinctItemValues returns the trimmed, distinct, sorted values of one item
// field across all quotations, keeping those containing search
// case-insensitively.
func (r *QuoteRepository) DistinctItemValues(ctx context.Context, field quote.ItemField, search string) ([]string, error) {
	key, ok := itemFields[field]
	if !ok {
		return nil, fmt.Errorf("unknown item field %q", field)
	}
	query := `
		SELECT DISTINCT btrim(item->>'` + key + `') AS value
		FROM quotations, jsonb_array_elements(items) AS item
		WHERE btrim(COALESCE(item->>'` + key + `', '')) <> ''
		  AND ($1::text = '' OR strpos(lower(item->>'` + key + `'), lower($1)) > 0)
		ORDER BY value`

	rows, err := r.db.Pool.Query(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("distinct item %s: %w", field, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("distinct item %s: %w", field, err)
	}
	return values, nil
}

var itemFields = map[quote.ItemField]string{
	quote.FieldCategory:    "category",
	quote.FieldDescription: "description",
}

func (r *QuoteRepository) one(ctx context.Context, query string, args ...any) (quote.Quote, error) {
	q, err := scanQuote(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return quote.Quote{}, quoteError(err)
	}
	return q, nil
}

// quoteError translates driver errors into the quote package's sentinels.
func quoteError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return quote.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", quote.ErrConflict, err)
	}
	return err
}

func scanQuote(row pgx.Row) (quote.Quote, error) {
	var (
		q        quote.Quote
		customer []byte
		items    []byte
		status   string
	)
	err := row.Scan(
		&q.ID,
		&q.Number,
		&customer,
		&q.ProjectName,
		&items,
		&q.TaxRatePercent,
		&q.ValidityDays,
		&q.QuotationDate,
		&q.DeliveredOn,
		&status,
		&q.Amount,
		&q.Notes,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return quote.Quote{}, err
	}
	q.Status = quote.NormalizeStatus(status)
	if err := json.Unmarshal(customer, &q.Customer); err != nil {
		return quote.Quote{}, fmt.Errorf("decode customer of %s: %w", q.ID, err)
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return quote.Quote{}, fmt.Errorf("decode items of %s: %w", q.ID, err)
	}
	return q, nil
}

func encodeJSON(q quote.Quote) (customer, items []byte, err error) {
	customer, err = json.Marshal(q.Customer)
	if err != nil {
		return nil, nil, fmt.Errorf("encode customer: %w", err)
	}
	if q.Items == nil {
		q.Items = []quote.Item{}
	}
	items, err = json.Marshal(q.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}
	return customer, items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
