package postgres

import (
	"errors"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func observe(prom *observability.Prom, op string, fn func() error) error {
	return prom.ObserveDB(op, fn)
}
