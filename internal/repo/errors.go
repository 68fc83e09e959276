package repo

import (
	"context"
	"errors"

	"remindme/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a document does not exist for the user.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key (user email) already exists.
	ErrDuplicate = errors.New("document already exists")
	// ErrStale is returned by a guarded write when the stored rev is no longer
	// the one the caller read.
	ErrStale = errors.New("document changed since it was read")
)

// pgErr maps driver errors onto the repo sentinels.
func pgErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case utils.IsPGUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

// guardErr tells a missing row from a rev mismatch after a guarded UPDATE or
// DELETE matched nothing.
func guardErr(ctx context.Context, db *pgxpool.Pool, table, userID, id string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE user_id = $1 AND id = $2)`
	if err := db.QueryRow(ctx, query, userID, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStale
	}
	return ErrNotFound
}
