package vitals

import (
	"bytes"
	"encoding/json"
	"math"
)

// VitalStats holds descriptive statistics for one vital.
type VitalStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"`
}

// NamedStats pairs a vital with its statistics.
type NamedStats struct {
	Vital Vital
	VitalStats
}

// StatsSet is an ordered list of per-vital statistics. It marshals as a JSON
// object whose keys keep the slice order.
type StatsSet []NamedStats

// Get returns the statistics for v.
func (s StatsSet) Get(v Vital) (VitalStats, bool) {
	for _, n := range s {
		if n.Vital == v {
			return n.VitalStats, true
		}
	}
	return VitalStats{}, false
}

func (s StatsSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(n.Vital))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(n.VitalStats)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// accumulator folds a stream of readings into count, mean, extrema and the
// sum of squared deviations (Welford), without keeping the readings.
type accumulator struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (a *accumulator) add(x float64) {
	a.n++
	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		a.min = math.Min(a.min, x)
		a.max = math.Max(a.max, x)
	}
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// sampleStd is the n-1 standard deviation, defined as 0 below two readings.
func (a *accumulator) sampleStd() float64 {
	if a.n < 2 {
		return 0
	}
	return math.Sqrt(a.m2 / float64(a.n-1))
}

func (a *accumulator) stats() VitalStats {
	return VitalStats{
		Mean: round2(a.mean),
		Min:  round2(a.min),
		Max:  round2(a.max),
		Std:  round2(a.sampleStd()),
	}
}
