package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// querier — общее у *sql.DB и *sql.Tx, чтобы чтения можно было делать и внутри транзакции.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const uniqueViolation = "23505"

// isUniqueViolation понимает ошибки обоих драйверов: pgx (рантайм) и lib/pq (тесты).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

func beginTx(ctx context.Context, database *sql.DB) (*sql.Tx, error) {
	return database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// Ping — для /healthz.
func Ping(ctx context.Context, database *sql.DB) error {
	return database.PingContext(ctx)
}

func pqStrings(v []string) any { return pq.Array(v) }

func pqInt64s(v []int64) any { return pq.Array(v) }
