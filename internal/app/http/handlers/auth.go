package handlers

import (
	"net/http"

	"valour-interiors/quotes_backend/internal/app/http/responses"
	"valour-interiors/quotes_backend/internal/app/http/validators"
)

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (LoginRequest) ValidationMessage() string {
	return "Name and password are required."
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validators.DecodeJSONBody(w, r, &req); err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		responses.WriteError(r.Context(), h.Log, w, err)
		return
	}
	responses.WriteSuccess(w, session)
}
