// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
)

// ErrNotFound is returned by repositories when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: row not found")

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("dberr: duplicate key")

// Classify maps driver errors onto the package sentinels, leaving others wrapped with action.
//
// Repositories call it on every failure so that services can branch on
// [ErrNotFound] and [ErrDuplicate] without importing pgx.
func Classify(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not found
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			// The referenced row is missing.
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w", action, err)
}

// Wrap converts a repository error into an [apperr.AppError] for the transport layer.
//
// resource names the entity in the 404/409 messages.
func Wrap(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict(resource + " already exists")
	case apperr.IsAppError(err):
		return err
	default:
		return apperr.Internal(err)
	}
}
