package appointments

import (
	"context"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

func (s *Service) Get(ctx context.Context, id int) (domain.Appointment, error) {
	var out domain.Appointment
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		a, err := tx.Appointments().Get(ctx, id)
		out = a
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.filter(ctx, func(domain.Appointment) bool { return true })
}

func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]domain.Appointment, error) {
	return s.filter(ctx, func(a domain.Appointment) bool { return a.PatientID == patientID })
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int) ([]domain.Appointment, error) {
	return s.filter(ctx, func(a domain.Appointment) bool { return a.DoctorID == doctorID })
}

// ListByDate matches the stored date string exactly.
func (s *Service) ListByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	return s.filter(ctx, func(a domain.Appointment) bool { return a.Date == date })
}

func (s *Service) filter(ctx context.Context, keep func(domain.Appointment) bool) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, 0)
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		rows, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		for _, a := range rows {
			if keep(a) {
				out = append(out, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFull joins every appointment with its patient and doctor. Dangling
// references show placeholder text.
func (s *Service) ListFull(ctx context.Context) ([]domain.FullAppointment, error) {
	var out []domain.FullAppointment
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		appts, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		patients, err := tx.Patients().List(ctx)
		if err != nil {
			return err
		}
		doctors, err := tx.Doctors().List(ctx)
		if err != nil {
			return err
		}

		byPatient := make(map[int]*domain.Patient, len(patients))
		for i := range patients {
			byPatient[patients[i].ID] = &patients[i]
		}
		byDoctor := make(map[int]*domain.Doctor, len(doctors))
		for i := range doctors {
			byDoctor[doctors[i].ID] = &doctors[i]
		}

		out = make([]domain.FullAppointment, 0, len(appts))
		for _, a := range appts {
			out = append(out, domain.JoinAppointment(a, byPatient[a.PatientID], byDoctor[a.DoctorID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
