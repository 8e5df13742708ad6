package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"assetmanager/src/schemas"
	"assetmanager/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetBankAccounts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.AssetsController.GetBankAccounts(r.Context()), http.StatusOK)
}

func (h *Handler) GetStocks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stocks, err := h.AssetsController.GetStocks(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, stocks, http.StatusOK)
}

func (h *Handler) GetStockAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing user"))
		return
	}
	h.getStockAssets(w, r, userID)
}

// GetDummyStockAssets serves the portfolio of the configured demo user
// without authentication.
func (h *Handler) GetDummyStockAssets(w http.ResponseWriter, r *http.Request) {
	h.getStockAssets(w, r, h.DummyUserID)
}

func (h *Handler) getStockAssets(w http.ResponseWriter, r *http.Request, userID int64) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	baseCurrency := true
	if raw := r.URL.Query().Get("base_currency"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleErrors(w, utils.BadRequest("base_currency must be a boolean"))
			return
		}
		baseCurrency = parsed
	}

	assets, err := h.AssetsController.GetStockAssets(ctx, userID, baseCurrency)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) CreateStockAssets(w http.ResponseWriter, r *http.Request) {
	h.writeStockAssets(w, r, h.AssetsController.CreateStockAssets)
}

func (h *Handler) UpdateStockAssets(w http.ResponseWriter, r *http.Request) {
	h.writeStockAssets(w, r, h.AssetsController.UpdateStockAssets)
}

func (h *Handler) writeStockAssets(w http.ResponseWriter, r *http.Request, write func(context.Context, int64, []schemas.StockAssetRequest) error) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing user"))
		return
	}
	var requests []schemas.StockAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body: "+err.Error()))
		return
	}
	if err := write(ctx, userID, requests); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, schemas.DetailResponse{Detail: "success"}, http.StatusOK)
}

func (h *Handler) DeleteStockAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("missing user"))
		return
	}
	assetID, err := strconv.ParseInt(chi.URLParam(r, "asset_id"), 10, 64)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("asset_id must be an integer"))
		return
	}
	if err := h.AssetsController.DeleteStockAsset(ctx, userID, assetID); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, schemas.DetailResponse{Detail: "success"}, http.StatusOK)
}
