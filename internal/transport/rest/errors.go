package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/observability/metrics"
	"clinic/backend/internal/store"
)

const internalErrorText = "internal server error"

// writeError maps err to a status and writes the failure envelope. message is
// the action that failed, e.g. "could not create patient".
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	log := s.log.With(
		slog.String("request_id", requestIDFrom(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	var vErr *domain.ValidationError
	var bErr *badRequest
	switch {
	case errors.As(err, &bErr):
		log.Info("bad request", slog.String("reason", bErr.msg))
		writeFailure(w, http.StatusBadRequest, message, bErr.msg)
	case errors.As(err, &vErr):
		log.Info("validation failed", slog.Any("problems", vErr.Problems))
		writeFailure(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, domain.ErrSchedulingConflict):
		log.Info("scheduling conflict", slog.Any("err", err))
		writeFailure(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, store.ErrDuplicateKey):
		log.Info("duplicate key", slog.Any("err", err))
		writeFailure(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, http.StatusNotFound, message, err.Error())
	default:
		log.Error("request failed", slog.Any("err", err))
		detail := internalErrorText
		if s.development {
			detail = err.Error()
		}
		writeFailure(w, http.StatusInternalServerError, message, detail)
	}
}

// bookingOutcome classifies the result of an appointment write for metrics.
func bookingOutcome(err error) string {
	var vErr *domain.ValidationError
	var bErr *badRequest
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.Is(err, domain.ErrSchedulingConflict):
		return metrics.OutcomeConflict
	case errors.As(err, &vErr), errors.As(err, &bErr):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
