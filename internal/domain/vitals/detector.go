package vitals

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultCohortConcurrency = 4

// Detector flags out-of-range readings and records them as alerts.
type Detector struct {
	ranges      RangeTable
	records     VitalsRepository
	alerts      AlertRepository
	logger      zerolog.Logger
	concurrency int

	// writeMu serializes alert batches so each invocation commits at most one.
	writeMu sync.Mutex
}

func NewDetector(ranges RangeTable, records VitalsRepository, alerts AlertRepository, logger zerolog.Logger) *Detector {
	return &Detector{
		ranges:      ranges,
		records:     records,
		alerts:      alerts,
		logger:      logger,
		concurrency: defaultCohortConcurrency,
	}
}

// SetConcurrency bounds the number of parallel record fetches in DetectCohort.
func (d *Detector) SetConcurrency(n int) {
	if n > 0 {
		d.concurrency = n
	}
}

// Ranges returns the table the detector scores against.
func (d *Detector) Ranges() RangeTable {
	return d.ranges
}

// Evaluate scores records against the range table without touching the
// store. Alerts come out vital-major, then in record order.
func (d *Detector) Evaluate(records []VitalRecord) []Alert {
	alerts := []Alert{}
	for _, rng := range d.ranges.ranges {
		for i := range records {
			rec := &records[i]
			value, ok := rec.Reading(rng.Vital)
			if !ok {
				continue
			}
			_, sev, breached := rng.Evaluate(value)
			if !breached {
				continue
			}
			alerts = append(alerts, Alert{
				PatientID: rec.PatientID,
				Timestamp: rec.Timestamp,
				Vital:     rng.Vital,
				Value:     round2(value),
				Severity:  sev,
				Message:   fmt.Sprintf("%s=%.1f outside %s", rng.Vital, value, rng),
			})
		}
	}
	return alerts
}

// Detect scans the records matching f, persists every alert in one batch
// and returns them. Nothing is written when no reading breaches its range.
func (d *Detector) Detect(ctx context.Context, f Filter) ([]Alert, error) {
	records, err := d.records.Query(ctx, f)
	if err != nil {
		return nil, storageErr("query vital records", err)
	}
	alerts := d.Evaluate(records)
	if err := d.persist(ctx, alerts); err != nil {
		return nil, err
	}
	d.logger.Debug().
		Str("patient_id", f.PatientID).
		Int("records", len(records)).
		Int("alerts", len(alerts)).
		Msg("detection complete")
	return alerts, nil
}

// DetectCohort runs detection over several patients. Record fetches run in
// parallel; scoring follows the order of patientIDs and all alerts are
// written in a single batch. Repeated IDs are scanned once. f.PatientID is
// ignored.
func (d *Detector) DetectCohort(ctx context.Context, patientIDs []string, f Filter) ([]Alert, error) {
	patientIDs = uniqueIDs(patientIDs)
	sets := make([][]VitalRecord, len(patientIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, id := range patientIDs {
		i, id := i, id
		g.Go(func() error {
			pf := f
			pf.PatientID = id
			recs, err := d.records.Query(gctx, pf)
			if err != nil {
				return storageErr(fmt.Sprintf("query vital records for %s", id), err)
			}
			sets[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []VitalRecord
	for _, s := range sets {
		records = append(records, s...)
	}
	alerts := d.Evaluate(records)
	if err := d.persist(ctx, alerts); err != nil {
		return nil, err
	}
	d.logger.Debug().
		Int("patients", len(patientIDs)).
		Int("records", len(records)).
		Int("alerts", len(alerts)).
		Msg("cohort detection complete")
	return alerts, nil
}

// DetectEachPatient runs cohort detection over every patient with stored
// records, in patient ID order.
func (d *Detector) DetectEachPatient(ctx context.Context, f Filter) ([]Alert, error) {
	ids, err := d.records.PatientIDs(ctx)
	if err != nil {
		return nil, storageErr("list patient ids", err)
	}
	return d.DetectCohort(ctx, ids, f)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (d *Detector) persist(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if err := d.alerts.AppendBatch(ctx, alerts); err != nil {
		return storageErr("append alerts", err)
	}
	return nil
}
