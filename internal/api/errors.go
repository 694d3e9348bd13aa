package api

import (
	"net/http"

	"github.com/leca/multi-image-host/internal/provider"
)

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, msg string) {
	Error(w, http.StatusInternalServerError, msg)
}

// UploadError maps an upload failure to its response: caller mistakes are
// 400, everything else is 500.
func UploadError(w http.ResponseWriter, err error, fallback string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	if provider.IsClientError(err) {
		BadRequest(w, msg)
		return
	}
	InternalError(w, msg)
}
