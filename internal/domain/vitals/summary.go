package vitals

import (
	"context"
	"math"
)

// TimeRange is the [earliest, latest] record timestamp.
type TimeRange [2]float64

// PatientSummary is recomputed from the stored records on every request.
// A patient without records yields Records == 0 and no statistics.
type PatientSummary struct {
	PatientID   string     `json:"patient_id"`
	Records     int        `json:"records"`
	TimeRange   *TimeRange `json:"time_range,omitempty"`
	VitalsStats StatsSet   `json:"vitals_stats,omitempty"`
}

// Aggregator computes per-patient descriptive statistics.
type Aggregator struct {
	ranges  RangeTable
	records VitalsRepository
}

func NewAggregator(ranges RangeTable, records VitalsRepository) *Aggregator {
	return &Aggregator{ranges: ranges, records: records}
}

// Summarize streams the patient's records once, folding every tracked vital
// into its own accumulator. An empty patientID matches no records.
func (a *Aggregator) Summarize(ctx context.Context, patientID string) (*PatientSummary, error) {
	if patientID == "" {
		return &PatientSummary{}, nil
	}

	accs := make([]accumulator, len(a.ranges.ranges))
	count := 0
	minTS, maxTS := math.Inf(1), math.Inf(-1)

	err := a.records.Each(ctx, Filter{PatientID: patientID}, func(rec VitalRecord) error {
		count++
		minTS = math.Min(minTS, rec.Timestamp)
		maxTS = math.Max(maxTS, rec.Timestamp)
		for i, rng := range a.ranges.ranges {
			if v, ok := rec.Reading(rng.Vital); ok {
				accs[i].add(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("query vital records", err)
	}

	summary := &PatientSummary{PatientID: patientID, Records: count}
	if count == 0 {
		return summary, nil
	}

	summary.TimeRange = &TimeRange{minTS, maxTS}
	summary.VitalsStats = make(StatsSet, len(accs))
	for i, rng := range a.ranges.ranges {
		summary.VitalsStats[i] = NamedStats{Vital: rng.Vital, VitalStats: accs[i].stats()}
	}
	return summary, nil
}
