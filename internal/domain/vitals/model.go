package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Vital identifies one tracked vital sign.
type Vital string

const (
	HeartRate   Vital = "heart_rate"
	BPSystolic  Vital = "bp_systolic"
	BPDiastolic Vital = "bp_diastolic"
	Temperature Vital = "temperature"
	SpO2        Vital = "spo2"
	RespRate    Vital = "resp_rate"
)

// TrackedVitals lists every vital a record carries, in reporting order.
var TrackedVitals = []Vital{HeartRate, BPSystolic, BPDiastolic, Temperature, SpO2, RespRate}

// IsTracked reports whether v is one of the six tracked vitals.
func IsTracked(v Vital) bool {
	for _, t := range TrackedVitals {
		if t == v {
			return true
		}
	}
	return false
}

// Severity is the tier assigned to an out-of-range reading.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// VitalRecord maps to the vital_records table. Timestamp is seconds since
// the Unix epoch; records are not required to arrive in order.
type VitalRecord struct {
	ID          int64     `db:"id" json:"-"`
	BatchID     uuid.UUID `db:"batch_id" json:"batch_id"`
	PatientID   string    `db:"patient_id" json:"patient_id"`
	Timestamp   float64   `db:"observed_at" json:"timestamp"`
	HeartRate   float64   `db:"heart_rate" json:"heart_rate"`
	BPSystolic  float64   `db:"bp_systolic" json:"bp_systolic"`
	BPDiastolic float64   `db:"bp_diastolic" json:"bp_diastolic"`
	Temperature float64   `db:"temperature" json:"temperature"`
	SpO2        float64   `db:"spo2" json:"spo2"`
	RespRate    float64   `db:"resp_rate" json:"resp_rate"`
}

// Reading returns the record's value for v.
func (r *VitalRecord) Reading(v Vital) (float64, bool) {
	switch v {
	case HeartRate:
		return r.HeartRate, true
	case BPSystolic:
		return r.BPSystolic, true
	case BPDiastolic:
		return r.BPDiastolic, true
	case Temperature:
		return r.Temperature, true
	case SpO2:
		return r.SpO2, true
	case RespRate:
		return r.RespRate, true
	}
	return 0, false
}

// SetReading stores value for v and reports whether v is tracked.
func (r *VitalRecord) SetReading(v Vital, value float64) bool {
	switch v {
	case HeartRate:
		r.HeartRate = value
	case BPSystolic:
		r.BPSystolic = value
	case BPDiastolic:
		r.BPDiastolic = value
	case Temperature:
		r.Temperature = value
	case SpO2:
		r.SpO2 = value
	case RespRate:
		r.RespRate = value
	default:
		return false
	}
	return true
}

// Alert maps to the alerts table. One alert is raised per (record, vital)
// breach; alerts are append-only.
type Alert struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID string    `db:"patient_id" json:"patient_id"`
	Timestamp float64   `db:"observed_at" json:"timestamp"`
	Vital     Vital     `db:"vital" json:"vital"`
	Value     float64   `db:"value" json:"value"`
	Severity  Severity  `db:"severity" json:"severity"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
