package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "missing" and "owned by someone else".
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflicting concurrent update")
	ErrDuplicate     = errors.New("duplicate key")
	ErrNotConfigured = errors.New("not configured")
)

// EngineError is a non-success answer from the execution engine.
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("execution engine returned %d: %s", e.StatusCode, e.Message)
}
