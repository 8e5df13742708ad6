package handlers

import (
	"context"
	"net/http"
	"time"

	"assetmanager/src/utils"
)

func (h *Handler) GetIngestionStatus(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Controller.IngestionStatus(r.Context()), http.StatusOK)
}

func (h *Handler) RefreshExchangeRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	refreshed, err := h.Controller.RefreshExchangeRates(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, refreshed, http.StatusOK)
}

// Rollup backfills snapshots between the startDate and endDate query
// parameters. endDate defaults to startDate.
func (h *Handler) Rollup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	startDateStr := r.URL.Query().Get("startDate")
	endDateStr := r.URL.Query().Get("endDate")
	if startDateStr == "" {
		h.HandleErrors(w, utils.BadRequest("startDate is required"))
		return
	}
	if endDateStr == "" {
		endDateStr = startDateStr
	}

	startDate, err := time.Parse(utils.ShortDashDateLayout, startDateStr)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid startDate format"))
		return
	}
	endDate, err := time.Parse(utils.ShortDashDateLayout, endDateStr)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid endDate format"))
		return
	}

	result, err := h.Controller.Rollup(ctx, startDate, endDate)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}
