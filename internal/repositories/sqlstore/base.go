package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"customer-api/internal/repositories"
)

// BaseRepository provides common functionality for all SQL repositories.
// Queries are written with ? placeholders and rebound for the driver in use.
type BaseRepository[T any] struct {
	db     *sqlx.DB
	table  string
	entity string
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sqlx.DB, table, entity string, logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository[T]{
		db:     db,
		table:  table,
		entity: entity,
		logger: logger,
	}
}

// buildWhereClause builds a WHERE clause from filter conditions
func (r *BaseRepository[T]) buildWhereClause(filter repositories.Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	conds := filter.Conditions()
	if len(conds) == 0 {
		return "", nil
	}

	conditions := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for _, c := range conds {
		conditions = append(conditions, fmt.Sprintf("%s = ?", c.Column))
		args = append(args, c.Value)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeGet runs a single-row query into dest. sql.ErrNoRows becomes a
// NotFound error for id.
func (r *BaseRepository[T]) executeGet(ctx context.Context, operation string, id int64, dest interface{}, query string, args ...interface{}) error {
	query = r.db.Rebind(query)

	start := time.Now()
	err := r.db.GetContext(ctx, dest, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repositories.NotFoundError(r.entity, formatID(id))
		}
		return r.wrapError(operation, id, err)
	}
	return nil
}

// executeSelect runs a multi-row query into the slice pointed to by dest
func (r *BaseRepository[T]) executeSelect(ctx context.Context, operation string, dest interface{}, query string, args ...interface{}) error {
	query = r.db.Rebind(query)

	start := time.Now()
	err := r.db.SelectContext(ctx, dest, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return r.wrapError(operation, 0, err)
	}
	return nil
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation string, id int64, query string, args ...interface{}) (sql.Result, error) {
	query = r.db.Rebind(query)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, r.wrapError(operation, id, err)
	}
	return result, nil
}

// validateID rejects identifiers the store can never have assigned
func (r *BaseRepository[T]) validateID(operation string, id int64) error {
	if id <= 0 {
		return repositories.NewRepositoryError(operation, r.entity, formatID(id), repositories.ErrInvalidID)
	}
	return nil
}

// wrapError classifies a driver error. Connectivity failures become
// ConnectionError so callers can report the store as unavailable.
func (r *BaseRepository[T]) wrapError(operation string, id int64, err error) error {
	if isConnectionError(err) {
		return repositories.ConnectionError(operation, r.entity, err)
	}
	idStr := ""
	if id > 0 {
		idStr = formatID(id)
	}
	return repositories.NewRepositoryError(operation, r.entity, idStr, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	// database/sql does not export its closed-pool error
	if strings.Contains(err.Error(), "sql: database is closed") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrNotADB:
			return true
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 is connection exception, 57P is operator intervention
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}

	return false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
