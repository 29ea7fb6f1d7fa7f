package vitals

import (
	"encoding/json"
	"testing"
)

func TestAccumulator_TwoReadings(t *testing.T) {
	var a accumulator
	a.add(70)
	a.add(80)
	got := a.stats()
	want := VitalStats{Mean: 75, Min: 70, Max: 80, Std: 7.07}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}

func TestAccumulator_SingleReading(t *testing.T) {
	var a accumulator
	a.add(36.6)
	got := a.stats()
	if got.Std != 0 {
		t.Errorf("std of one reading = %v, want 0", got.Std)
	}
	if got.Mean != 36.6 || got.Min != 36.6 || got.Max != 36.6 {
		t.Errorf("stats = %+v", got)
	}
}

func TestAccumulator_Unordered(t *testing.T) {
	var a accumulator
	for _, x := range []float64{98, 93, 100, 95} {
		a.add(x)
	}
	got := a.stats()
	if got.Min != 93 || got.Max != 100 {
		t.Errorf("min/max = %v/%v, want 93/100", got.Min, got.Max)
	}
	if got.Mean != 96.5 {
		t.Errorf("mean = %v, want 96.5", got.Mean)
	}
	// sample variance: (2.25+12.25+12.25+2.25)/3 = 9.6667
	if got.Std != 3.11 {
		t.Errorf("std = %v, want 3.11", got.Std)
	}
}

func TestStatsSet_MarshalJSONKeepsOrder(t *testing.T) {
	set := StatsSet{
		{Vital: SpO2, VitalStats: VitalStats{Mean: 97}},
		{Vital: HeartRate, VitalStats: VitalStats{Mean: 72, Min: 70, Max: 74, Std: 2.83}},
	}
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"spo2":{"mean":97,"min":0,"max":0,"std":0},"heart_rate":{"mean":72,"min":70,"max":74,"std":2.83}}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	if s, ok := set.Get(HeartRate); !ok || s.Mean != 72 {
		t.Errorf("Get(heart_rate) = %+v, %v", s, ok)
	}
	if _, ok := set.Get(Temperature); ok {
		t.Error("Get(temperature) should miss")
	}
}

func TestStatsSet_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(StatsSet{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("got %s, want {}", data)
	}
}
