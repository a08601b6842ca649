package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"valour-interiors/quotes_backend/internal/app/http/responses"
	"valour-interiors/quotes_backend/internal/app/http/validators"
	"valour-interiors/quotes_backend/internal/domain/quote"
	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

type nextNumberResponse struct {
	QuotationNumber string `json:"quotationNumber"`
}

type StatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=Created Sent Delivered"`
	DeliveredOn string `json:"deliveredOn" validate:"omitempty,max=40"`
}

func (StatusRequest) ValidationMessage() string {
	return "Invalid status value."
}

type itemsQuery struct {
	Type   string `json:"type" validate:"required,oneof=categories descriptions"`
	Search string `json:"search" validate:"max=100"`
}

func (itemsQuery) ValidationMessage() string {
	return `Invalid type parameter. Use "categories" or "descriptions".`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	f, err := listFilter(r)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	quotes, err := h.Quotes.List(r.Context(), f)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if quotes == nil {
		quotes = []quote.Quote{}
	}
	responses.WriteSuccess(w, quotes)
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, q)
}

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var in quote.Input
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	q, err := h.Quotes.Create(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, q)
}

func (h *Handlers) ReplaceQuote(w http.ResponseWriter, r *http.Request) {
	var in quote.Input
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	q, err := h.Quotes.Replace(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, q)
}

func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := validators.DecodeJSONBody(w, r, &req); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	q, err := h.Quotes.SetStatus(r.Context(), chi.URLParam(r, "id"), quote.StatusUpdate{
		Status:      req.Status,
		DeliveredOn: req.DeliveredOn,
	})
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, q)
}

func (h *Handlers) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Quotes.Delete(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, deleteResponse{ID: id, Message: "Quotation deleted successfully."})
}

func (h *Handlers) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.Quotes.NextNumber(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, nextNumberResponse{QuotationNumber: strconv.FormatInt(n, 10)})
}

// Items serves autocomplete values: ?type=categories|descriptions&search=.
func (h *Handlers) Items(w http.ResponseWriter, r *http.Request) {
	q := itemsQuery{
		Type:   r.URL.Query().Get("type"),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if err := validators.Struct(q); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	values, err := h.Quotes.Suggestions(r.Context(), q.Type, q.Search)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, values)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.Quotes.Stats(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, s)
}

// listFilter reads ?status= (case-insensitive, empty means all) and
// ?order=asc|desc.
func listFilter(r *http.Request) (quote.ListFilter, error) {
	var f quote.ListFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := quote.NormalizeStatus(raw)
		if !strings.EqualFold(string(status), raw) {
			return f, apperrors.New(apperrors.CodeValidation, "Invalid status value.")
		}
		f.Status = status
	}

	switch strings.ToLower(strings.TrimSpace(q.Get("order"))) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, apperrors.New(apperrors.CodeValidation, `Invalid order value. Use "asc" or "desc".`)
	}
	return f, nil
}
