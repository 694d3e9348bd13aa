package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the only error shape the gateway returns.
type ErrorBody struct {
	Error string `json:"error"`
}

// ProviderInfo describes one upload provider and its local limits.
type ProviderInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	AllowedTypes     []string `json:"allowedTypes"`
	MaxSize          int64    `json:"maxSize"`
	MaxSizeFormatted string   `json:"maxSizeFormatted"`
	Summary          string   `json:"summary"`
	Configured       bool     `json:"configured"`
}

// WriteJSON serialises resp as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("WriteJSON: failed to encode response", "error", err)
	}
}
