package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writeList[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	n := len(rows)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: rows, Count: &n})
}

func writeFailure(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Error: detail})
}

// badRequest wraps client input errors that are not field validation.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &badRequest{msg: "request body is required"}
		}
		return &badRequest{msg: fmt.Sprintf("malformed JSON body: %v", err)}
	}
	return nil
}

func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &badRequest{msg: fmt.Sprintf("%s must be a positive integer, got %q", name, raw)}
	}
	return id, nil
}

func pathDate(r *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "date"))
	if raw == "" {
		return "", &badRequest{msg: "date is required"}
	}
	return raw, nil
}

