package handler

import (
	"net/http"

	"github.com/vaxwatch/vaxwatch/internal/application/stats"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// StatsHandler serves the read-only stats endpoints. All of them bypass the
// notifier and read the stores directly.
type StatsHandler struct {
	svc stats.Service
}

func NewStatsHandler(svc stats.Service) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, previous, err := h.svc.Latest(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LatestEnvelope{Latest: latest, Previous: previous})
}

func (h *StatsHandler) Week(w http.ResponseWriter, r *http.Request) {
	week, err := h.svc.Week(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (h *StatsHandler) Overall(w http.ResponseWriter, r *http.Request) {
	latest, week, err := h.svc.Overall(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Latest *domain.DailyRecord `json:"latest"`
		Week   *stats.Weekly       `json:"week"`
	}{Latest: latest, Week: week})
}

func (h *StatsHandler) Supply(w http.ResponseWriter, r *http.Request) {
	latest, previous, err := h.svc.Supply(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SupplyEnvelope{Latest: latest, Previous: previous})
}
