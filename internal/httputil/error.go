package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tourney-predictor/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func Forbidden(w http.ResponseWriter, msg string, err error) {
	slog.Warn("forbidden", "message", msg, "error", err)
	http.Error(w, msg, http.StatusForbidden)
}

// Error picks the status for a service error. Validation failures echo the error text
// back to the caller, anything unknown is a 500.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, msg, err)
	case errors.Is(err, service.ErrForbidden):
		Forbidden(w, msg, err)
	case errors.Is(err, service.ErrGameFinished),
		errors.Is(err, service.ErrTeamsUndetermined):
		slog.Warn("conflict", "message", msg, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrPenaltyWinnerRequired),
		errors.Is(err, service.ErrInvalidGroupCount),
		errors.Is(err, service.ErrInvalidGroupSize),
		errors.Is(err, service.ErrInvalidHonorRoll):
		BadRequest(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
