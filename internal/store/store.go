// Package store persists validated submissions and enforces each kind's
// duplicate policy.
//
// The lookup that precedes every insert is not atomic with it: two requests for
// the same key can both pass the lookup. The unique index on the backing table
// or collection is the real guard, and a uniqueness violation raised by the
// insert is reported as Duplicate, the same as a lookup hit.
package store

import (
	"context"
	"strings"

	"vastucraft/internal/domain"
	apperrors "vastucraft/pkg/errors"
)

// Outcome is the result of a successful InsertIfAbsent.
type Outcome int

const (
	Created Outcome = iota + 1
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Store persists submissions.
//
// Errors are *errors.AppError values: ErrCodeUnavailable when there is no live
// connection, ErrCodeInternalError when the duplicate lookup fails and
// ErrCodePersistence when the insert fails.
type Store interface {
	InsertIfAbsent(ctx context.Context, sub domain.Submission) (Outcome, error)
}

func unavailable(err error) error {
	return apperrors.Wrap(apperrors.ErrCodeUnavailable, "no database connection", err)
}

func lookupFailed(err error) error {
	return apperrors.Wrap(apperrors.ErrCodeInternalError, "duplicate lookup failed", err)
}

func insertFailed(err error) error {
	return apperrors.Wrap(apperrors.ErrCodePersistence, "insert failed", err)
}

// isUniqueViolation recognizes unique-constraint errors from sqlite and postgres
// when the dialect did not translate them to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
