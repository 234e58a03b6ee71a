package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const pgUniqueViolation = "23505"

// DuplicateError reports a unique constraint violation. Field names the
// column (or logical slot) that clashed, e.g. "slug" or "rank".
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// translateError maps driver errors to the repository error vocabulary.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Field: fieldFromConstraint(pgErr.ConstraintName), Err: err}
	}

	msg := err.Error()
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "UNIQUE constraint failed") {
		return &DuplicateError{Field: fieldFromSQLiteMessage(msg), Err: err}
	}
	return err
}

// fieldFromConstraint turns an index name such as "idx_movies_slug" or
// "idx_assignment_category_rank" into the clashing field.
func fieldFromConstraint(name string) string {
	switch {
	case strings.HasSuffix(name, "_rank"):
		return "rank"
	case name == "idx_assignment_movie_category":
		return "movie"
	}
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// fieldFromSQLiteMessage parses "UNIQUE constraint failed: movies.slug" and
// the multi-column "category_assignments.category_id, category_assignments.rank".
func fieldFromSQLiteMessage(msg string) string {
	i := strings.Index(msg, "UNIQUE constraint failed:")
	if i < 0 {
		return ""
	}
	cols := strings.Split(msg[i+len("UNIQUE constraint failed:"):], ",")
	var names []string
	for _, col := range cols {
		col = strings.TrimSpace(col)
		if dot := strings.LastIndex(col, "."); dot >= 0 {
			col = col[dot+1:]
		}
		names = append(names, col)
	}
	for _, n := range names {
		if n == "rank" {
			return "rank"
		}
	}
	if len(names) > 1 {
		return "movie"
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

// NotFoundError names the missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ErrLastRecord guards deletions that would leave a required table empty.
var ErrLastRecord = errors.New("cannot delete the last remaining record")
