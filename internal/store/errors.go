package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrReadOnly     = errors.New("read-only transaction")
)

// NotFound reports a missing record of c.
func NotFound(c Collection, id int) error {
	return fmt.Errorf("%s %d: %w", c.Singular(), id, ErrNotFound)
}

// DuplicateNationalID reports a nationalId already held by another record of c.
func DuplicateNationalID(c Collection, nationalID string) error {
	return fmt.Errorf("%s with nationalId %s already exists: %w", c.Singular(), nationalID, ErrDuplicateKey)
}
