package database

import (
	"errors"
	"fmt"
)

// Common database errors that can be checked using errors.Is().
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input data")
	ErrQueryFailed  = errors.New("query execution failed")
)

// DBError wraps a driver error with context about the failing operation.
type DBError struct {
	err     error
	context string
}

// NewDBError creates a new DBError. The context should describe what
// operation was being performed when the error occurred.
func NewDBError(err error, context string) *DBError {
	return &DBError{err: err, context: context}
}

func (e *DBError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.context, e.err)
	}
	return e.context
}

func (e *DBError) Unwrap() error {
	return e.err
}
