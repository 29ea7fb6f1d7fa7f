package vitals

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// VitalRange is the inclusive normal band for one vital.
type VitalRange struct {
	Vital Vital   `yaml:"vital" json:"vital"`
	Low   float64 `yaml:"low" json:"low"`
	High  float64 `yaml:"high" json:"high"`
}

// Span is the width of the normal band. RangeTable guarantees it is positive.
func (r VitalRange) Span() float64 {
	return r.High - r.Low
}

// Contains reports whether value lies inside [Low, High].
func (r VitalRange) Contains(value float64) bool {
	return value >= r.Low && value <= r.High
}

// String renders the band the way alert messages quote it, e.g. "[36.1,37.8]".
func (r VitalRange) String() string {
	return "[" + formatBound(r.Low) + "," + formatBound(r.High) + "]"
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RangeTable is an ordered, immutable set of normal ranges. Its order is the
// iteration order for detection and the key order of summary statistics.
type RangeTable struct {
	ranges []VitalRange
}

// NewRangeTable validates ranges and returns a table in the given order.
func NewRangeTable(ranges ...VitalRange) (RangeTable, error) {
	if len(ranges) == 0 {
		return RangeTable{}, fmt.Errorf("range table is empty")
	}
	seen := make(map[Vital]bool, len(ranges))
	out := make([]VitalRange, 0, len(ranges))
	for _, r := range ranges {
		if !IsTracked(r.Vital) {
			return RangeTable{}, fmt.Errorf("unknown vital %q", r.Vital)
		}
		if seen[r.Vital] {
			return RangeTable{}, fmt.Errorf("duplicate range for %s", r.Vital)
		}
		if !(r.Low < r.High) {
			return RangeTable{}, fmt.Errorf("range for %s: low %v must be below high %v", r.Vital, r.Low, r.High)
		}
		seen[r.Vital] = true
		out = append(out, r)
	}
	return RangeTable{ranges: out}, nil
}

// DefaultRanges returns the adult clinical reference ranges.
func DefaultRanges() RangeTable {
	return RangeTable{ranges: []VitalRange{
		{Vital: HeartRate, Low: 60, High: 100},
		{Vital: BPSystolic, Low: 90, High: 140},
		{Vital: BPDiastolic, Low: 60, High: 90},
		{Vital: Temperature, Low: 36.1, High: 37.8},
		{Vital: SpO2, Low: 95, High: 100},
		{Vital: RespRate, Low: 12, High: 20},
	}}
}

// Ranges returns a copy of the table's entries.
func (t RangeTable) Ranges() []VitalRange {
	out := make([]VitalRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Lookup returns the range configured for v.
func (t RangeTable) Lookup(v Vital) (VitalRange, bool) {
	for _, r := range t.ranges {
		if r.Vital == v {
			return r, true
		}
	}
	return VitalRange{}, false
}

func (t RangeTable) Len() int {
	return len(t.ranges)
}

type rangeFile struct {
	Ranges []VitalRange `yaml:"ranges"`
}

// LoadRangeTable reads a YAML range table from path.
func LoadRangeTable(path string) (RangeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RangeTable{}, fmt.Errorf("reading range file: %w", err)
	}
	return ParseRangeTable(data)
}

// ParseRangeTable decodes a YAML document of the form
//
//	ranges:
//	  - vital: heart_rate
//	    low: 60
//	    high: 100
func ParseRangeTable(data []byte) (RangeTable, error) {
	var f rangeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RangeTable{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return NewRangeTable(f.Ranges...)
}

// MarshalRangeTable renders t in the format ParseRangeTable reads.
func MarshalRangeTable(t RangeTable) ([]byte, error) {
	return yaml.Marshal(rangeFile{Ranges: t.ranges})
}
