package repository

import (
	"go-weave/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translate maps driver errors onto the domain sentinels and wraps the rest
// with the failing operation.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(domain.ErrNotFound, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return errors.Wrapf(domain.ErrConflict, "%s: %s", op, pgErr.Message)
		case pgUniqueViolation:
			return errors.Wrapf(domain.ErrDuplicate, "%s: %s", op, pgErr.ConstraintName)
		}
	}
	return errors.Wrap(err, op)
}
