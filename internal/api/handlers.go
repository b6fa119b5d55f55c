// Package api exposes the simulation service over HTTP.
package api

import (
	"net/http"

	"github.com/CodingFreeze/FiveTenAlgo/internal/api/response"
	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/service"
	"github.com/CodingFreeze/FiveTenAlgo/internal/timeline"
)

// Handler serves the simulation API endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a Handler over svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// params extracts the mode, period and timeline query parameters, falling
// back to defaults for anything missing or unknown.
func params(r *http.Request) (core.Mode, core.Period, timeline.Timeline) {
	q := r.URL.Query()

	mode := core.ModeByName(q.Get("mode"))

	period := core.Period(q.Get("period"))
	if !period.IsValid() {
		period = core.PeriodAll
	}

	tl := timeline.Timeline(q.Get("timeline"))
	if tl == "" {
		tl = timeline.All
	}
	return mode, period, tl
}

// PerformanceHistory returns the windowed performance history.
func (h *Handler) PerformanceHistory(w http.ResponseWriter, r *http.Request) {
	mode, period, tl := params(r)
	history, err := h.svc.PerformanceHistory(r.Context(), mode, period, tl)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}

// TradeLog returns the windowed trade log.
func (h *Handler) TradeLog(w http.ResponseWriter, r *http.Request) {
	mode, period, tl := params(r)
	trades, err := h.svc.TradeLog(r.Context(), mode, period, tl)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, trades)
}

// Portfolio returns the current holdings and cash.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	mode, period, _ := params(r)
	p, err := h.svc.Portfolio(r.Context(), mode, period)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// Metrics returns performance metrics for the windowed state.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	mode, period, tl := params(r)
	m, err := h.svc.Metrics(r.Context(), mode, period, tl)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, m)
}

// Distribution returns the cash/equity split over time.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	mode, period, tl := params(r)
	dist, err := h.svc.Distribution(r.Context(), mode, period, tl)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, dist)
}

// Status reports service readiness.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.svc.Status())
}
