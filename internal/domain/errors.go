package domain

import (
	"errors"
	"strings"
)

var ErrSchedulingConflict = errors.New("doctor already has an appointment in that time slot")

type ProblemKind string

const (
	ProblemInvalid   ProblemKind = "invalid"
	ProblemRequired  ProblemKind = "required"
	ProblemReference ProblemKind = "reference"
)

// Problem is one failed rule on one field.
type Problem struct {
	Field   string      `json:"field"`
	Kind    ProblemKind `json:"kind"`
	Message string      `json:"message"`
}

// ValidationError aggregates every problem found on a record.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid data"
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return "invalid data: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field string, kind ProblemKind, message string) {
	e.Problems = append(e.Problems, Problem{Field: field, Kind: kind, Message: message})
}

// Has reports whether a problem was recorded for field.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
