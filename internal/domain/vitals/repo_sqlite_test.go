package vitals

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthguard/healthguard/internal/platform/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFilter_Where(t *testing.T) {
	since, until := 10.0, 20.0
	tests := []struct {
		name     string
		f        Filter
		ph       placeholder
		wantSQL  string
		wantArgs int
	}{
		{"empty", Filter{}, dollarPlaceholder, "", 0},
		{"patient", Filter{PatientID: "P1"}, dollarPlaceholder, " WHERE patient_id = $1", 1},
		{"window pg", Filter{PatientID: "P1", Since: &since, Until: &until}, dollarPlaceholder,
			" WHERE patient_id = $1 AND observed_at >= $2 AND observed_at <= $3", 3},
		{"window sqlite", Filter{Until: &until}, questionPlaceholder, " WHERE observed_at <= ?", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.f.where(tt.ph)
			if clause != tt.wantSQL {
				t.Errorf("clause = %q, want %q", clause, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d", args, tt.wantArgs)
			}
		})
	}
}

func TestAlertFilter_Where(t *testing.T) {
	clause, args := AlertFilter{PatientID: "P1", Severity: SeverityCritical}.where(dollarPlaceholder)
	if clause != " WHERE patient_id = $1 AND severity = $2" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 2 || args[1] != "critical" {
		t.Errorf("args = %v", args)
	}
	if clause, _ := (AlertFilter{}).where(questionPlaceholder); clause != "" {
		t.Errorf("expected empty clause, got %q", clause)
	}
}

func TestVitalsRepoSQLite_AppendAndQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewVitalsRepoSQLite(openTestDB(t))
	batch := uuid.New()

	recs := []VitalRecord{
		normalRecord("P001", 300),
		normalRecord("P001", 100),
		normalRecord("P002", 200),
		normalRecord("P001", 100),
	}
	recs[3].HeartRate = 99
	for i := range recs {
		recs[i].BatchID = batch
	}
	if err := repo.Append(ctx, recs); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if recs[0].ID == 0 {
		t.Error("expected IDs to be assigned")
	}

	got, err := repo.Query(ctx, Filter{PatientID: "P001"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Timestamp != 100 || got[1].Timestamp != 100 || got[2].Timestamp != 300 {
		t.Errorf("not ordered by timestamp: %v %v %v", got[0].Timestamp, got[1].Timestamp, got[2].Timestamp)
	}
	if got[0].HeartRate != 72 || got[1].HeartRate != 99 {
		t.Error("equal timestamps should keep insertion order")
	}
	if got[0].BatchID != batch || got[0].Temperature != 36.8 {
		t.Errorf("round trip mismatch: %+v", got[0])
	}

	since := 150.0
	windowed, err := repo.Query(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(windowed) != 2 {
		t.Errorf("expected 2 records since 150, got %d", len(windowed))
	}

	ids, err := repo.PatientIDs(ctx)
	if err != nil {
		t.Fatalf("PatientIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "P001" || ids[1] != "P002" {
		t.Errorf("patient ids = %v", ids)
	}
}

func TestVitalsRepoSQLite_EmptyAppend(t *testing.T) {
	repo := NewVitalsRepoSQLite(openTestDB(t))
	if err := repo.Append(context.Background(), nil); err != nil {
		t.Errorf("empty append: %v", err)
	}
}

func TestAlertRepoSQLite_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepoSQLite(openTestDB(t))

	alerts := []Alert{
		{PatientID: "P001", Timestamp: 1, Vital: HeartRate, Value: 130, Severity: SeverityCritical, Message: "heart_rate=130.0 outside [60,100]"},
		{PatientID: "P001", Timestamp: 2, Vital: SpO2, Value: 93, Severity: SeverityWarning, Message: "spo2=93.0 outside [95,100]"},
		{PatientID: "P002", Timestamp: 3, Vital: RespRate, Value: 30, Severity: SeverityCritical, Message: "resp_rate=30.0 outside [12,20]"},
	}
	if err := repo.AppendBatch(ctx, alerts); err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}
	for _, a := range alerts {
		if a.ID == uuid.Nil || a.CreatedAt.IsZero() {
			t.Errorf("expected ID and CreatedAt to be set: %+v", a)
		}
	}

	items, total, err := repo.List(ctx, AlertFilter{PatientID: "P001"}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 alerts for P001, got %d/%d", len(items), total)
	}
	if items[0].Timestamp != 2 {
		t.Errorf("expected newest observation first, got %v", items[0].Timestamp)
	}

	items, total, err = repo.List(ctx, AlertFilter{Severity: SeverityCritical}, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 1 {
		t.Fatalf("expected page of 1 out of 2, got %d/%d", len(items), total)
	}
	if items[0].Severity != SeverityCritical || items[0].Vital == "" {
		t.Errorf("unexpected alert %+v", items[0])
	}
}

func TestDetector_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	records := NewVitalsRepoSQLite(conn)
	alertRepo := NewAlertRepoSQLite(conn)

	ing := NewIngestor(records, zerolog.Nop())
	row := baseRow("P001")
	row["timestamp"] = "1000"
	row["heart_rate"] = "130"
	row["temperature"] = "38.8"
	row["spo2"] = "93"
	if _, err := ing.Ingest(ctx, []Row{row, baseRow("P002")}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	d := NewDetector(DefaultRanges(), records, alertRepo, zerolog.Nop())
	alerts, err := d.Detect(ctx, Filter{PatientID: "P001"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}

	stored, total, err := alertRepo.List(ctx, AlertFilter{}, 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(stored) != 3 {
		t.Errorf("expected 3 stored alerts, got %d", total)
	}

	s, err := NewAggregator(DefaultRanges(), records).Summarize(ctx, "P001")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Records != 1 {
		t.Errorf("records = %d, want 1", s.Records)
	}
	if hr, _ := s.VitalsStats.Get(HeartRate); hr.Mean != 130 {
		t.Errorf("heart_rate mean = %v", hr.Mean)
	}
}

func TestAggregator_EmptyPatientIDWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	records := NewVitalsRepoSQLite(openTestDB(t))

	p1, p2 := baseRow("P1"), baseRow("P2")
	p1["heart_rate"], p2["heart_rate"] = "70", "80"
	if _, err := NewIngestor(records, zerolog.Nop()).Ingest(ctx, []Row{p1, p2}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	s, err := NewAggregator(DefaultRanges(), records).Summarize(ctx, "")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Records != 0 || s.VitalsStats != nil {
		t.Errorf("summary for empty id included %d records of other patients", s.Records)
	}
}
