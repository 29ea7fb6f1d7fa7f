package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/platform/db"
	"github.com/healthguard/healthguard/internal/platform/hipaa"
)

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type repoSQLite struct {
	db     *sql.DB
	cipher *hipaa.FieldCipher
}

// NewRepoSQLite returns a SQLite repository. cipher may be nil.
func NewRepoSQLite(conn *sql.DB, cipher *hipaa.FieldCipher) Repository {
	return &repoSQLite{db: conn, cipher: cipher}
}

func (r *repoSQLite) conn(ctx context.Context) sqlQuerier {
	if tx := db.SQLTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *repoSQLite) scan(row rowScanner) (*Patient, error) {
	var p Patient
	var id string
	var age sql.NullInt64
	var history sql.NullString
	if err := row.Scan(&id, &p.PatientID, &p.Name, &age, &history, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if history.Valid {
		if p.History, err = r.cipher.Open(&history.String); err != nil {
			return nil, fmt.Errorf("patient %s: %w", p.PatientID, err)
		}
	}
	return &p, nil
}

func (r *repoSQLite) Create(ctx context.Context, p *Patient) error {
	history, err := r.cipher.Seal(p.History)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err = r.conn(ctx).ExecContext(ctx, `
		INSERT INTO patients (id, patient_id, name, age, history, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)`,
		p.ID.String(), p.PatientID, p.Name, p.Age, history, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *repoSQLite) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRowContext(ctx, `SELECT `+patientCols+` FROM patients WHERE patient_id = ?`, patientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoSQLite) Update(ctx context.Context, p *Patient) error {
	history, err := r.cipher.Seal(p.History)
	if err != nil {
		return fmt.Errorf("patient update: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE patients SET name = ?, age = ?, history = ?, updated_at = ?
		WHERE patient_id = ?`,
		p.Name, p.Age, history, p.UpdatedAt, p.PatientID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *repoSQLite) Delete(ctx context.Context, patientID string) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM patients WHERE patient_id = ?`, patientID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoSQLite) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+patientCols+` FROM patients ORDER BY patient_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
