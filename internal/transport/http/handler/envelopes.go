package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LatestEnvelope wraps the latest-day stats pair.
type LatestEnvelope struct {
	Latest   *domain.DailyRecord `json:"latest"`
	Previous *domain.DailyRecord `json:"previous"`
}

// SupplyEnvelope wraps the weekly supply pair.
type SupplyEnvelope struct {
	Latest   *domain.SupplyRecord `json:"latest"`
	Previous *domain.SupplyRecord `json:"previous"`
}

// ExportEnvelope wraps a history export result.
type ExportEnvelope struct {
	Location string `json:"location"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels onto HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "no data available")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
