// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/models"
	"yatube/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// tracked wraps one repository call in a span, a latency observation and error logging.
type tracked struct {
	table string
	log   *observability.RepoLogger
}

func newTracked(table string) tracked {
	return tracked{table: table, log: observability.NewRepoLogger(table)}
}

// start returns the traced context and a completion func taking the call's final error.
func (t tracked) start(ctx context.Context, method string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, t.table, method)
	stop := observability.TrackQuery(method, t.table)
	return ctx, func(err error) {
		stop()
		if err != nil && !models.IsNotFound(err) && !models.IsValidation(err) {
			t.log.LogError(ctx, err, method)
		}
		observability.EndSpan(span, err)
	}
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and anything else to INTERNAL_ERROR.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
