package patient

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/healthguard/healthguard/internal/platform/db"
	"github.com/healthguard/healthguard/internal/platform/hipaa"
)

func newSQLiteRepo(t *testing.T, cipher *hipaa.FieldCipher) (Repository, func(query string) string) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	rawHistory := func(patientID string) string {
		var h string
		if err := conn.QueryRowContext(ctx, `SELECT history FROM patients WHERE patient_id = ?`, patientID).Scan(&h); err != nil {
			t.Fatalf("raw history: %v", err)
		}
		return h
	}
	return NewRepoSQLite(conn, cipher), rawHistory
}

func TestRepoSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepo(t, nil)

	history := "asthma"
	p := &Patient{PatientID: "P001", Name: "Grace", Age: intPtr(44), History: &history}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &Patient{PatientID: "P002", Name: "Alan"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByPatientID(ctx, "P001")
	if err != nil {
		t.Fatalf("GetByPatientID: %v", err)
	}
	if got.ID != p.ID || got.Name != "Grace" || got.Age == nil || *got.Age != 44 {
		t.Errorf("unexpected patient %+v", got)
	}
	if got.History == nil || *got.History != "asthma" {
		t.Errorf("history = %v", got.History)
	}

	other, err := repo.GetByPatientID(ctx, "P002")
	if err != nil {
		t.Fatalf("GetByPatientID: %v", err)
	}
	if other.Age != nil || other.History != nil {
		t.Errorf("expected optional fields to stay nil: %+v", other)
	}

	got.Name = "Grace H."
	got.Age = nil
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByPatientID(ctx, "P001")
	if got.Name != "Grace H." || got.Age != nil {
		t.Errorf("update not applied: %+v", got)
	}

	items, total, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 || items[0].PatientID != "P001" {
		t.Errorf("unexpected list %d/%d", len(items), total)
	}

	if err := repo.Delete(ctx, "P001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByPatientID(ctx, "P001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "P001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, &Patient{PatientID: "P404", Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepoSQLite_UniquePatientID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepo(t, nil)
	if err := repo.Create(ctx, &Patient{PatientID: "P001", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, &Patient{PatientID: "P001", Name: "B"}); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestRepoSQLite_EncryptsHistory(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	enc, err := hipaa.NewPHIEncryptor(key)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo, rawHistory := newSQLiteRepo(t, hipaa.NewFieldCipherWith(enc))

	history := "type 1 diabetes"
	if err := repo.Create(ctx, &Patient{PatientID: "P001", Name: "A", History: &history}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if raw := rawHistory("P001"); raw == history {
		t.Error("history should be stored encrypted")
	}
	got, err := repo.GetByPatientID(ctx, "P001")
	if err != nil {
		t.Fatalf("GetByPatientID: %v", err)
	}
	if got.History == nil || *got.History != history {
		t.Errorf("history = %v, want %q", got.History, history)
	}
}
