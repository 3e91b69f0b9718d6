package patients

import (
	"context"
	"fmt"
	"strings"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context) ([]domain.Patient, error) {
	var out []domain.Patient
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		rows, err := tx.Patients().List(ctx)
		out = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (domain.Patient, error) {
	var out domain.Patient
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Patients().Get(ctx, id)
		out = p
		return err
	})
	if err != nil {
		return domain.Patient{}, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.PatientPatch) (domain.Patient, error) {
	p, err := domain.NewPatient(in)
	if err != nil {
		return domain.Patient{}, err
	}

	var out domain.Patient
	err = s.store.InTx(ctx, store.Patients, func(ctx context.Context, tx store.Tx) error {
		created, err := tx.Patients().Create(ctx, p)
		out = created
		return err
	})
	if err != nil {
		return domain.Patient{}, err
	}
	return out, nil
}

// Update merges patch over the stored patient and revalidates the result.
func (s *Service) Update(ctx context.Context, id int, patch domain.PatientPatch) (domain.Patient, error) {
	var out domain.Patient
	err := s.store.InTx(ctx, store.Patients, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Patients().Get(ctx, id)
		if err != nil {
			return err
		}
		merged := patch.Apply(existing)
		if err := merged.Validate(); err != nil {
			return err
		}
		updated, err := tx.Patients().Update(ctx, id, merged)
		out = updated
		return err
	})
	if err != nil {
		return domain.Patient{}, err
	}
	return out, nil
}

// Delete leaves the patient's appointments in place.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.InTx(ctx, store.Patients, func(ctx context.Context, tx store.Tx) error {
		return tx.Patients().Delete(ctx, id)
	})
}

func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (domain.Patient, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return domain.Patient{}, err
	}
	nationalID = strings.TrimSpace(nationalID)
	for _, p := range rows {
		if p.NationalID == nationalID {
			return p, nil
		}
	}
	return domain.Patient{}, fmt.Errorf("patient with nationalId %s: %w", nationalID, store.ErrNotFound)
}

// SearchByInsuranceProvider matches a case-insensitive substring.
func (s *Service) SearchByInsuranceProvider(ctx context.Context, provider string) ([]domain.Patient, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(provider))
	out := make([]domain.Patient, 0)
	for _, p := range rows {
		if strings.Contains(strings.ToLower(p.InsuranceProvider), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}
