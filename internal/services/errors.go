package services

import (
	"errors"
	"fmt"
	"log"
)

// Failure taxonomy surfaced to the handler layer. Handlers translate these
// to 400/404/403/409; everything else becomes an OperationError with a
// sanitized message.
var (
	ErrInvalidID         = errors.New("invalid identifier")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidEnvelope   = errors.New("invalid backup envelope")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrDuplicateCategory = errors.New("category name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// OperationError wraps an unexpected store failure. The message is safe to
// return to callers; the cause is only logged.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// failOp logs the underlying error with context and returns the sanitized
// wrapper.
func failOp(op string, err error) error {
	log.Printf("operation %q failed: %v", op, err)
	return &OperationError{Op: op, Err: err}
}
