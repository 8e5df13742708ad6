package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"assetmanager/src/schemas"
	"assetmanager/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req := new(schemas.TokenRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	tokens, err := h.AuthController.Login(ctx, chi.URLParam(r, "provider"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, tokens, http.StatusOK)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req := new(schemas.RefreshRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	tokens, err := h.AuthController.Refresh(ctx, req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, tokens, http.StatusOK)
}
