// Package repository contains the MySQL data access layer.  Each
// repository wraps a *sql.DB handle and exposes the operations the
// engine's store interfaces require.  Row-not-found conditions are
// translated into model.NotFoundError here so callers never see
// sql.ErrNoRows; all other database failures propagate unchanged.
package repository

import (
	"database/sql"
	"errors"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// notFound maps sql.ErrNoRows onto the typed not-found error for the
// given resource name, leaving every other error untouched.
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFoundError{Resource: resource, Err: err}
	}
	return err
}
