package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("artwork not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError lists the required fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the backing medium. It matches
// ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
