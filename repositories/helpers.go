package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// SQLExecutor abstracts *sql.DB and *sql.Tx so repository methods can take
// part in a caller-managed transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrScoreNotFound       = errors.New("score submission not found")
	ErrLiveSessionNotFound = errors.New("live session not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrStateNotFound       = errors.New("competition state snapshot not found")
)

const pqForeignKeyViolation = "23503"

// isPQCode reports whether err is a *pq.Error with the given SQLSTATE code.
func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
