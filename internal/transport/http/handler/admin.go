package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vaxwatch/vaxwatch/internal/application/admin"
	"github.com/vaxwatch/vaxwatch/internal/application/subscription"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// AdminHandler serves the operator-only endpoints. The router guards every
// route here with JWT auth plus the admin role.
type AdminHandler struct {
	svc  admin.Service
	subs subscription.Service
}

func NewAdminHandler(svc admin.Service, subs subscription.Service) *AdminHandler {
	return &AdminHandler{svc: svc, subs: subs}
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := h.svc.Broadcast(r.Context(), req.Message)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) TestUpdate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.TestUpdate(r.Context()); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "test update sent"})
}

func (h *AdminHandler) UpsertSupply(w http.ResponseWriter, r *http.Request) {
	var input domain.SupplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.UpsertSupply(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *AdminHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	location, err := h.svc.ExportHistory(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExportEnvelope{Location: location})
}

func (h *AdminHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.DownloadExport(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *AdminHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := h.svc.RecentReports(r.Context(), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
