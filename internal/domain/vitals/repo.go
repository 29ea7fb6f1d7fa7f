package vitals

import (
	"context"
	"fmt"
	"strings"
)

// Filter restricts a record query. Zero values mean "no restriction";
// Since and Until are inclusive bounds on the record timestamp.
type Filter struct {
	PatientID string
	Since     *float64
	Until     *float64
}

// AlertFilter restricts an alert listing.
type AlertFilter struct {
	PatientID string
	Severity  Severity
}

type VitalsRepository interface {
	// Append stores records atomically: all rows are written or none.
	Append(ctx context.Context, records []VitalRecord) error
	// Query returns matching records ordered by timestamp ascending.
	Query(ctx context.Context, f Filter) ([]VitalRecord, error)
	// Each streams matching records in Query order without materializing them.
	Each(ctx context.Context, f Filter, fn func(VitalRecord) error) error
	PatientIDs(ctx context.Context) ([]string, error)
}

type AlertRepository interface {
	// AppendBatch stores alerts atomically, assigning ID and CreatedAt.
	AppendBatch(ctx context.Context, alerts []Alert) error
	List(ctx context.Context, f AlertFilter, limit, offset int) ([]Alert, int, error)
}

// placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// where builds the WHERE clause for f; it is empty when f is unrestricted.
func (f Filter) where(ph placeholder) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, ph(len(args))))
	}
	if f.PatientID != "" {
		add("patient_id = %s", f.PatientID)
	}
	if f.Since != nil {
		add("observed_at >= %s", *f.Since)
	}
	if f.Until != nil {
		add("observed_at <= %s", *f.Until)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f AlertFilter) where(ph placeholder) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.PatientID != "" {
		args = append(args, f.PatientID)
		conds = append(conds, "patient_id = "+ph(len(args)))
	}
	if f.Severity != "" {
		args = append(args, string(f.Severity))
		conds = append(conds, "severity = "+ph(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const recordCols = `id, batch_id, patient_id, observed_at, heart_rate, bp_systolic, bp_diastolic, temperature, spo2, resp_rate`

const alertCols = `id, patient_id, observed_at, vital, value, severity, message, created_at`

// recordOrder keeps equal timestamps in insertion order.
const recordOrder = ` ORDER BY observed_at ASC, id ASC`

const alertOrder = ` ORDER BY created_at DESC, observed_at DESC`
