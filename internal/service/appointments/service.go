package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

type Service struct {
	store store.Store
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone in which dates and times are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// Validate checks a against the schedule rules and the stored patients and
// doctors, reporting every problem found.
func (s *Service) Validate(ctx context.Context, a domain.Appointment) error {
	return s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		return s.validate(ctx, tx, a)
	})
}

func (s *Service) validate(ctx context.Context, tx store.Tx, a domain.Appointment) error {
	var v domain.ValidationError
	a.ValidateSchedule(&v, s.clock())

	if a.PatientID == 0 {
		v.Add("patientId", domain.ProblemRequired, "patientId is required")
	} else if _, err := tx.Patients().Get(ctx, a.PatientID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		v.Add("patientId", domain.ProblemReference, "patient does not exist")
	}

	if a.DoctorID == 0 {
		v.Add("doctorId", domain.ProblemRequired, "doctorId is required")
	} else if _, err := tx.Doctors().Get(ctx, a.DoctorID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		v.Add("doctorId", domain.ProblemReference, "doctor does not exist")
	}

	return v.Err()
}

func conflictError(c domain.Appointment) error {
	return fmt.Errorf("%w: appointment %d on %s from %s to %s",
		domain.ErrSchedulingConflict, c.ID, c.Date, c.StartTime, c.EndTime)
}

// ConflictQuery describes a slot to check against a doctor's bookings.
type ConflictQuery struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	DoctorID  int    `json:"doctorId"`
	ExcludeID int    `json:"excludeId"`
}

// CheckConflict reports whether the slot overlaps an existing appointment of
// the same doctor on the same date, ignoring ExcludeID.
func (s *Service) CheckConflict(ctx context.Context, q ConflictQuery) (bool, error) {
	var v domain.ValidationError
	if _, ok := domain.ParseDate(q.Date, s.loc); !ok {
		v.Add("date", domain.ProblemInvalid, "date must be a valid YYYY-MM-DD date")
	}
	if !domain.ValidClock(q.StartTime) {
		v.Add("startTime", domain.ProblemInvalid, "startTime must be HH:MM")
	}
	if !domain.ValidClock(q.EndTime) {
		v.Add("endTime", domain.ProblemInvalid, "endTime must be HH:MM")
	}
	if q.DoctorID == 0 {
		v.Add("doctorId", domain.ProblemRequired, "doctorId is required")
	}
	if err := v.Err(); err != nil {
		return false, err
	}

	candidate := domain.Appointment{Date: q.Date, StartTime: q.StartTime, EndTime: q.EndTime, DoctorID: q.DoctorID}
	var conflict bool
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		rows, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		_, conflict = domain.FindConflict(rows, candidate, q.ExcludeID)
		return nil
	})
	if err != nil {
		return false, err
	}
	return conflict, nil
}

func (s *Service) Create(ctx context.Context, in domain.AppointmentPatch) (domain.Appointment, error) {
	a := in.Apply(domain.Appointment{})

	var out domain.Appointment
	err := s.store.InTx(ctx, store.Appointments, func(ctx context.Context, tx store.Tx) error {
		if err := s.validate(ctx, tx, a); err != nil {
			return err
		}
		rows, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		if c, clash := domain.FindConflict(rows, a, 0); clash {
			return conflictError(c)
		}
		created, err := tx.Appointments().Create(ctx, a)
		out = created
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// Update merges patch over the stored appointment, then validates and
// conflict-checks the result excluding the appointment itself.
func (s *Service) Update(ctx context.Context, id int, patch domain.AppointmentPatch) (domain.Appointment, error) {
	var out domain.Appointment
	err := s.store.InTx(ctx, store.Appointments, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Appointments().Get(ctx, id)
		if err != nil {
			return err
		}
		merged := patch.Apply(existing)
		if err := s.validate(ctx, tx, merged); err != nil {
			return err
		}
		rows, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		if c, clash := domain.FindConflict(rows, merged, id); clash {
			return conflictError(c)
		}
		updated, err := tx.Appointments().Update(ctx, id, merged)
		out = updated
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.InTx(ctx, store.Appointments, func(ctx context.Context, tx store.Tx) error {
		return tx.Appointments().Delete(ctx, id)
	})
}

// CreateSeries books the slot described by in on weeks dates, interval weeks
// apart, starting at in.Date. Either every occurrence is stored or none.
func (s *Service) CreateSeries(ctx context.Context, in domain.AppointmentPatch, weeks, interval int) ([]domain.Appointment, error) {
	base := in.Apply(domain.Appointment{})

	var v domain.ValidationError
	if weeks < 1 || weeks > domain.MaxSeriesLength {
		v.Add("weeks", domain.ProblemInvalid, "weeks must be between 1 and 26")
	}
	if interval < 0 {
		v.Add("interval", domain.ProblemInvalid, "interval must be positive")
	}
	if _, ok := domain.ParseDate(base.Date, s.loc); !ok {
		v.Add("date", domain.ProblemInvalid, "date must be a valid YYYY-MM-DD date")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	dates, err := domain.WeeklyDates(base.Date, weeks, interval)
	if err != nil {
		return nil, err
	}

	var out []domain.Appointment
	err = s.store.InTx(ctx, store.Appointments, func(ctx context.Context, tx store.Tx) error {
		out = make([]domain.Appointment, 0, len(dates))
		rows, err := tx.Appointments().List(ctx)
		if err != nil {
			return err
		}
		for _, date := range dates {
			occ := base
			occ.Date = date
			if err := s.validate(ctx, tx, occ); err != nil {
				return fmt.Errorf("occurrence on %s: %w", date, err)
			}
			if c, clash := domain.FindConflict(rows, occ, 0); clash {
				return conflictError(c)
			}
			created, err := tx.Appointments().Create(ctx, occ)
			if err != nil {
				return err
			}
			rows = append(rows, created)
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
