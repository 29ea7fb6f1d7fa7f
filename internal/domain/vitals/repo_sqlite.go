package vitals

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/platform/db"
)

type sqlQueryable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// =========== VitalRecord Repository ===========

type vitalsRepoSQLite struct{ db *sql.DB }

func NewVitalsRepoSQLite(conn *sql.DB) VitalsRepository {
	return &vitalsRepoSQLite{db: conn}
}

func (r *vitalsRepoSQLite) conn(ctx context.Context) sqlQueryable {
	if tx := db.SQLTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *vitalsRepoSQLite) scanRecord(row rowScanner) (VitalRecord, error) {
	var v VitalRecord
	var batchID string
	err := row.Scan(&v.ID, &batchID, &v.PatientID, &v.Timestamp,
		&v.HeartRate, &v.BPSystolic, &v.BPDiastolic, &v.Temperature, &v.SpO2, &v.RespRate)
	if err != nil {
		return v, err
	}
	v.BatchID, err = uuid.Parse(batchID)
	return v, err
}

func (r *vitalsRepoSQLite) Append(ctx context.Context, records []VitalRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithSQLTx(ctx, r.db, func(ctx context.Context) error {
		tx := db.SQLTxFromContext(ctx)
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO vital_records (batch_id, patient_id, observed_at,
				heart_rate, bp_systolic, bp_diastolic, temperature, spo2, resp_rate)
			VALUES (?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range records {
			v := &records[i]
			res, err := stmt.ExecContext(ctx, v.BatchID.String(), v.PatientID, v.Timestamp,
				v.HeartRate, v.BPSystolic, v.BPDiastolic, v.Temperature, v.SpO2, v.RespRate)
			if err != nil {
				return err
			}
			if id, err := res.LastInsertId(); err == nil {
				v.ID = id
			}
		}
		return nil
	})
}

func (r *vitalsRepoSQLite) Query(ctx context.Context, f Filter) ([]VitalRecord, error) {
	var items []VitalRecord
	err := r.Each(ctx, f, func(v VitalRecord) error {
		items = append(items, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *vitalsRepoSQLite) Each(ctx context.Context, f Filter, fn func(VitalRecord) error) error {
	where, args := f.where(questionPlaceholder)
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+recordCols+` FROM vital_records`+where+recordOrder, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := r.scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *vitalsRepoSQLite) PatientIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT DISTINCT patient_id FROM vital_records ORDER BY patient_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =========== Alert Repository ===========

type alertRepoSQLite struct{ db *sql.DB }

func NewAlertRepoSQLite(conn *sql.DB) AlertRepository {
	return &alertRepoSQLite{db: conn}
}

func (r *alertRepoSQLite) conn(ctx context.Context) sqlQueryable {
	if tx := db.SQLTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *alertRepoSQLite) scanAlert(row rowScanner) (Alert, error) {
	var a Alert
	var id string
	err := row.Scan(&id, &a.PatientID, &a.Timestamp, &a.Vital, &a.Value, &a.Severity, &a.Message, &a.CreatedAt)
	if err != nil {
		return a, err
	}
	a.ID, err = uuid.Parse(id)
	return a, err
}

func (r *alertRepoSQLite) AppendBatch(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return db.WithSQLTx(ctx, r.db, func(ctx context.Context) error {
		tx := db.SQLTxFromContext(ctx)
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO alerts (id, patient_id, observed_at, vital, value, severity, message, created_at)
			VALUES (?,?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range alerts {
			a := &alerts[i]
			a.ID = uuid.New()
			a.CreatedAt = now
			if _, err := stmt.ExecContext(ctx, a.ID.String(), a.PatientID, a.Timestamp,
				string(a.Vital), a.Value, string(a.Severity), a.Message, a.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *alertRepoSQLite) List(ctx context.Context, f AlertFilter, limit, offset int) ([]Alert, int, error) {
	where, args := f.where(questionPlaceholder)
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT `+alertCols+` FROM alerts`+where+alertOrder+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Alert
	for rows.Next() {
		a, err := r.scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
