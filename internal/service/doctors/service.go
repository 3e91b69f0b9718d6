package doctors

import (
	"context"
	"fmt"
	"sort"
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

func (s *Service) List(ctx context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		rows, err := tx.Doctors().List(ctx)
		out = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (domain.Doctor, error) {
	var out domain.Doctor
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		d, err := tx.Doctors().Get(ctx, id)
		out = d
		return err
	})
	if err != nil {
		return domain.Doctor{}, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.DoctorPatch) (domain.Doctor, error) {
	d, err := domain.NewDoctor(in)
	if err != nil {
		return domain.Doctor{}, err
	}

	var out domain.Doctor
	err = s.store.InTx(ctx, store.Doctors, func(ctx context.Context, tx store.Tx) error {
		created, err := tx.Doctors().Create(ctx, d)
		out = created
		return err
	})
	if err != nil {
		return domain.Doctor{}, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int, patch domain.DoctorPatch) (domain.Doctor, error) {
	var out domain.Doctor
	err := s.store.InTx(ctx, store.Doctors, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Doctors().Get(ctx, id)
		if err != nil {
			return err
		}
		merged := patch.Apply(existing)
		if err := merged.Validate(); err != nil {
			return err
		}
		updated, err := tx.Doctors().Update(ctx, id, merged)
		out = updated
		return err
	})
	if err != nil {
		return domain.Doctor{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.InTx(ctx, store.Doctors, func(ctx context.Context, tx store.Tx) error {
		return tx.Doctors().Delete(ctx, id)
	})
}

func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (domain.Doctor, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return domain.Doctor{}, err
	}
	nationalID = strings.TrimSpace(nationalID)
	for _, d := range rows {
		if d.NationalID == nationalID {
			return d, nil
		}
	}
	return domain.Doctor{}, fmt.Errorf("doctor with nationalId %s: %w", nationalID, store.ErrNotFound)
}

func (s *Service) SearchBySpecialty(ctx context.Context, specialty string) ([]domain.Doctor, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(specialty))
	out := make([]domain.Doctor, 0)
	for _, d := range rows {
		if strings.Contains(strings.ToLower(d.Specialty), needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Specialties lists each specialty once, compared case-insensitively. The
// spelling of the doctor with the lowest id wins.
func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	seen := make(map[string]bool, len(rows))
	out := make([]string, 0, len(rows))
	for _, d := range rows {
		key := strings.ToLower(d.Specialty)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d.Specialty)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out, nil
}
