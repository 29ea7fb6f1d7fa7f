package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const (
	PGTxKey  contextKey = "pg_tx"
	SQLTxKey contextKey = "sql_tx"
)

// TxFromContext retrieves the PostgreSQL transaction opened by WithTx.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(PGTxKey).(pgx.Tx)
	return tx
}

// SQLTxFromContext retrieves the SQLite transaction opened by WithSQLTx.
func SQLTxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(SQLTxKey).(*sql.Tx)
	return tx
}

// WithTx runs fn inside a PostgreSQL transaction carried on the context.
// The transaction commits when fn returns nil and rolls back on every other
// exit path, including panics. Nested calls join the outer transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, PGTxKey, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithSQLTx is the database/sql counterpart of WithTx used by the SQLite store.
func WithSQLTx(ctx context.Context, conn *sql.DB, fn func(ctx context.Context) error) error {
	if SQLTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, SQLTxKey, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
