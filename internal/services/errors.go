package services

import (
	"errors"
	"fmt"

	"whutmovie/internal/repository"
)

// ErrInvalidCredentials is the single outcome of a failed login, whatever
// the reason.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a clash on a unique field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// InvariantError refuses an operation that would break a business rule.
type InvariantError struct {
	Message string
	Details map[string]interface{}
}

func (e *InvariantError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// fromRepository converts repository errors for an operation on entity.
func fromRepository(err error, entity string) error {
	if err == nil {
		return nil
	}

	var nf *repository.NotFoundError
	if errors.As(err, &nf) {
		return &NotFoundError{Entity: nf.Entity}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity}
	}

	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		return conflictFor(entity, dup.Field)
	}
	return err
}

func conflictFor(entity, field string) *ConflictError {
	switch field {
	case "":
		return &ConflictError{Message: fmt.Sprintf("A conflicting %s already exists", entity)}
	case "rank":
		return &ConflictError{Field: field, Message: "That rank was taken by a concurrent change, please retry"}
	case "movie":
		return &ConflictError{Field: field, Message: "That movie is already assigned to this category"}
	}
	return &ConflictError{Field: field, Message: fmt.Sprintf("A %s with this %s already exists", entity, field)}
}
