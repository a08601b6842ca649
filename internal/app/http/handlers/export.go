package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"valour-interiors/quotes_backend/internal/app/http/responses"
	"valour-interiors/quotes_backend/internal/app/http/validators"
	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/xlsx"
	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerSaved   = "X-Quote-Saved"
	headerSource  = "X-Quote-Source"
	headerWarning = "X-Quote-Warning"
)

// Export validates, saves and renders a quotation in one step. The PDF is
// returned even when saving failed; the X-Quote-* headers tell the client
// what happened to the record.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var in quote.Input
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}

	res, err := h.Quotes.Export(r.Context(), in, h.ExportOpts)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}

	w.Header().Set(headerSaved, strconv.FormatBool(res.Saved))
	w.Header().Set(headerSource, string(res.Source))
	if res.Warning != "" {
		w.Header().Set(headerWarning, res.Warning)
	}
	responses.WriteFile(w, contentTypePDF, res.Document.Filename, res.Document.Data)
}

func (h *Handlers) QuotePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Quotes.Render(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteFile(w, contentTypePDF, doc.Filename, doc.Data)
}

// ExportXLSX downloads the quotation history, optionally filtered by status.
func (h *Handlers) ExportXLSX(w http.ResponseWriter, r *http.Request) {
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

	now := h.now()
	data, err := xlsx.Build(quotes, now)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, apperrors.Wrap(apperrors.CodeInternal, err, "Unable to build the spreadsheet."))
		return
	}
	responses.WriteFile(w, contentTypeXLSX, xlsx.Filename(now), data)
}
