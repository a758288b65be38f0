// Package inmem provides map-backed repositories for tests; no database needed.
package inmem

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
)

var errNotSupported = errors.New("inmem: raw SQL not supported")

// noopExecutor satisfies core.DBExecutor for types that never touch SQL.
type noopExecutor struct{}

func (noopExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNotSupported
}
func (noopExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNotSupported
}
func (noopExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (noopExecutor) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNotSupported
}
func (noopExecutor) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNotSupported
}

// DB satisfies core.DB with no-op transactions; inmem repositories are
// individually synchronized instead.
type DB struct {
	noopExecutor
}

var _ core.DB = (*DB)(nil)

func NewDB() *DB { return &DB{} }

func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

type noopTx struct {
	noopExecutor
}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
