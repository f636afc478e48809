package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/httpx"
	"github.com/BuzzBrady/quotecraft/internal/observability"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

// writeError maps domain errors to API responses. Anything unrecognised is
// logged and reported as a 500 without details.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *quotes.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:     "validation_failed",
			Message:   verr.Message,
			Field:     verr.Field,
			RequestID: middleware.GetReqID(r.Context()),
		})
	case errors.Is(err, catalog.ErrInvalid):
		httpx.Error(w, r, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, quotes.ErrInvalidStatus):
		httpx.Error(w, r, http.StatusBadRequest, "invalid_status", "unknown quote status")
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, quotes.ErrNotFound):
		httpx.Error(w, r, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, catalog.ErrReadOnly):
		httpx.Error(w, r, http.StatusConflict, "read_only", "catalog entries cannot be changed")
	case errors.Is(err, quotes.ErrLocked):
		httpx.Error(w, r, http.StatusConflict, "quote_locked", "accepted and rejected quotes cannot be changed")
	default:
		observability.FromContext(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.Error(w, r, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (s *server) writeBadJSON(w http.ResponseWriter, r *http.Request) {
	httpx.Error(w, r, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
}
