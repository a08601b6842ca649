package pdf

import "valour-interiors/quotes_backend/internal/domain/quote"

// Generator renders a quotation into a downloadable document.
type Generator interface {
	Generate(q quote.Quote) (quote.Document, error)
}
