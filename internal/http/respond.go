package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"lifedash/internal/core"
	"lifedash/internal/record"
	"lifedash/internal/service"
	"lifedash/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses. Validation
// failures keep their message; anything else is a server fault and only
// the log gets the detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, record.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "unknown collection")
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, core.ErrUnknownStatus),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func marshalView(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeBody reads a bounded JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
