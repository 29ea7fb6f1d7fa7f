package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthguard/healthguard/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// =========== VitalRecord Repository ===========

type vitalsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalsRepoPG(pool *pgxpool.Pool) VitalsRepository {
	return &vitalsRepoPG{pool: pool}
}

func (r *vitalsRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *vitalsRepoPG) scanRecord(row pgx.Row) (VitalRecord, error) {
	var v VitalRecord
	err := row.Scan(&v.ID, &v.BatchID, &v.PatientID, &v.Timestamp,
		&v.HeartRate, &v.BPSystolic, &v.BPDiastolic, &v.Temperature, &v.SpO2, &v.RespRate)
	return v, err
}

var copyRecordCols = []string{"batch_id", "patient_id", "observed_at",
	"heart_rate", "bp_systolic", "bp_diastolic", "temperature", "spo2", "resp_rate"}

func (r *vitalsRepoPG) Append(ctx context.Context, records []VitalRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		n, err := r.conn(ctx).CopyFrom(ctx, pgx.Identifier{"vital_records"}, copyRecordCols,
			pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
				v := records[i]
				return []interface{}{v.BatchID, v.PatientID, v.Timestamp,
					v.HeartRate, v.BPSystolic, v.BPDiastolic, v.Temperature, v.SpO2, v.RespRate}, nil
			}))
		if err != nil {
			return err
		}
		if int(n) != len(records) {
			return fmt.Errorf("copied %d of %d records", n, len(records))
		}
		return nil
	})
}

func (r *vitalsRepoPG) Query(ctx context.Context, f Filter) ([]VitalRecord, error) {
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

func (r *vitalsRepoPG) Each(ctx context.Context, f Filter, fn func(VitalRecord) error) error {
	where, args := f.where(dollarPlaceholder)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM vital_records`+where+recordOrder, args...)
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

func (r *vitalsRepoPG) PatientIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT DISTINCT patient_id FROM vital_records ORDER BY patient_id`)
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

type alertRepoPG struct{ pool *pgxpool.Pool }

func NewAlertRepoPG(pool *pgxpool.Pool) AlertRepository {
	return &alertRepoPG{pool: pool}
}

func (r *alertRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *alertRepoPG) scanAlert(row pgx.Row) (Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.Timestamp, &a.Vital, &a.Value, &a.Severity, &a.Message, &a.CreatedAt)
	return a, err
}

func (r *alertRepoPG) AppendBatch(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for i := range alerts {
			a := &alerts[i]
			a.ID = uuid.New()
			a.CreatedAt = now
			batch.Queue(`
				INSERT INTO alerts (id, patient_id, observed_at, vital, value, severity, message, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				a.ID, a.PatientID, a.Timestamp, string(a.Vital), a.Value, string(a.Severity), a.Message, a.CreatedAt)
		}
		return r.conn(ctx).SendBatch(ctx, batch).Close()
	})
}

func (r *alertRepoPG) List(ctx context.Context, f AlertFilter, limit, offset int) ([]Alert, int, error) {
	where, args := f.where(dollarPlaceholder)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM alerts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, listAlertsSQL(where, len(args)), append(args, limit, offset)...)
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

// listAlertsSQL numbers the LIMIT and OFFSET parameters after the filterArgs
// bound by where.
func listAlertsSQL(where string, filterArgs int) string {
	return fmt.Sprintf(`SELECT %s FROM alerts%s%s LIMIT $%d OFFSET $%d`,
		alertCols, where, alertOrder, filterArgs+1, filterArgs+2)
}
