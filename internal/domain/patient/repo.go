package patient

import "context"

type Repository interface {
	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, p *Patient) error
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, patientID string) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

const patientCols = `id, patient_id, name, age, history, created_at, updated_at`
