package patient

import (
	"context"
	"fmt"
	"strings"
)

const maxAge = 150

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func validate(p *Patient) error {
	p.PatientID = strings.TrimSpace(p.PatientID)
	p.Name = strings.TrimSpace(p.Name)
	if p.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > maxAge) {
		return fmt.Errorf("age must be between 0 and %d, got %d", maxAge, *p.Age)
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	if _, err := s.patients.GetByPatientID(ctx, p.PatientID); err == nil {
		return fmt.Errorf("patient %s already exists", p.PatientID)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	return s.patients.GetByPatientID(ctx, patientID)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, patientID string) error {
	return s.patients.Delete(ctx, patientID)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
