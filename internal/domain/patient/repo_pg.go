package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthguard/healthguard/internal/platform/db"
	"github.com/healthguard/healthguard/internal/platform/hipaa"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool   *pgxpool.Pool
	cipher *hipaa.FieldCipher
}

// NewRepoPG returns a PostgreSQL repository. cipher may be nil.
func NewRepoPG(pool *pgxpool.Pool, cipher *hipaa.FieldCipher) Repository {
	return &repoPG{pool: pool, cipher: cipher}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.PatientID, &p.Name, &p.Age, &p.History, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	h, err := r.cipher.Open(p.History)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", p.PatientID, err)
	}
	p.History = h
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	history, err := r.cipher.Seal(p.History)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, patient_id, name, age, history, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.Name, p.Age, history, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	history, err := r.cipher.Seal(p.History)
	if err != nil {
		return fmt.Errorf("patient update: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name = $2, age = $3, history = $4, updated_at = $5
		WHERE patient_id = $1`,
		p.PatientID, p.Name, p.Age, history, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, patientID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY patient_id LIMIT $1 OFFSET $2`, limit, offset)
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
