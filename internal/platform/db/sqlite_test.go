package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vitals.db")

	conn, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"vital_records", "alerts", "patients"} {
		var name string
		err := conn.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vitals.db")

	conn, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	conn.Close()

	conn, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("second open should be idempotent: %v", err)
	}
	conn.Close()
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", ":memory:?_foreign_keys=ON"},
		{"vitals.db", "vitals.db?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"},
		{"vitals.db?mode=ro", "vitals.db?mode=ro"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithSQLTx_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	defer conn.Close()

	insert := func(ctx context.Context, id string) error {
		tx := SQLTxFromContext(ctx)
		if tx == nil {
			t.Fatal("expected transaction on context")
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO patients (id, patient_id, name, created_at, updated_at)
			VALUES (?, ?, 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, id, id)
		return err
	}

	if err := WithSQLTx(ctx, conn, func(ctx context.Context) error {
		return insert(ctx, "P001")
	}); err != nil {
		t.Fatalf("commit path: %v", err)
	}

	boom := errors.New("boom")
	err = WithSQLTx(ctx, conn, func(ctx context.Context) error {
		if err := insert(ctx, "P002"); err != nil {
			return err
		}
		// nested calls join the outer transaction
		if err := WithSQLTx(ctx, conn, func(ctx context.Context) error {
			return insert(ctx, "P003")
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the committed row, got %d rows", count)
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil pgx transaction")
	}
	if SQLTxFromContext(context.Background()) != nil {
		t.Error("expected nil sql transaction")
	}
}
