package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"svyasa/app/auth"
	"svyasa/app/logger"
	"svyasa/app/middleware"
	"svyasa/app/moderation"
	"svyasa/app/repositories"
	"svyasa/app/services"

	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	middleware.WriteError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// rejectionBody is returned with 422 when the content filter blocks a submission.
type rejectionBody struct {
	Error string          `json:"error"`
	Kind  moderation.Kind `json:"kind"`
}

// handleServiceError maps service errors to responses. Unexpected failures
// are logged here and reach the client only as a generic message.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var rejection *moderation.RejectionError
	switch {
	case errors.As(err, &rejection):
		sendJSON(w, http.StatusUnprocessableEntity, rejectionBody{Error: rejection.Message, Kind: rejection.Kind})
	case errors.Is(err, services.ErrInvalidInput):
		sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		sendError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, auth.ErrSessionInvalid):
		sendError(w, http.StatusUnauthorized, "Authentication required")
	default:
		logger.FromContext(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		sendError(w, http.StatusInternalServerError, middleware.InternalErrorMessage)
	}
}
