package store

import (
	"fmt"

	"clinic/backend/internal/domain"
)

// Schema is the static description of one record type.
type Schema[T any] struct {
	Collection Collection
	ID         func(T) int
	SetID      func(*T, int)
	// NationalID is nil for collections without a unique national id.
	NationalID func(T) string
}

var PatientSchema = Schema[domain.Patient]{
	Collection: Patients,
	ID:         func(p domain.Patient) int { return p.ID },
	SetID:      func(p *domain.Patient, id int) { p.ID = id },
	NationalID: func(p domain.Patient) string { return p.NationalID },
}

var DoctorSchema = Schema[domain.Doctor]{
	Collection: Doctors,
	ID:         func(d domain.Doctor) int { return d.ID },
	SetID:      func(d *domain.Doctor, id int) { d.ID = id },
	NationalID: func(d domain.Doctor) string { return d.NationalID },
}

var AppointmentSchema = Schema[domain.Appointment]{
	Collection: Appointments,
	ID:         func(a domain.Appointment) int { return a.ID },
	SetID:      func(a *domain.Appointment, id int) { a.ID = id },
}

// NextID is one past the highest identifier in rows, or 1 when empty.
func (s Schema[T]) NextID(rows []T) int {
	highest := 0
	for _, r := range rows {
		if id := s.ID(r); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// checkKeys rejects rows holding a non-positive identifier, or an identifier
// or national id already held by an earlier row.
func (s Schema[T]) checkKeys(rows []T) error {
	ids := make(map[int]bool, len(rows))
	nationalIDs := make(map[string]bool, len(rows))
	for _, r := range rows {
		id := s.ID(r)
		if id <= 0 {
			return fmt.Errorf("%s: %s must be positive, got %d", s.Collection, s.Collection.IDField(), id)
		}
		if ids[id] {
			return fmt.Errorf("%s: %s %d appears twice: %w", s.Collection, s.Collection.IDField(), id, ErrDuplicateKey)
		}
		ids[id] = true

		if s.NationalID == nil {
			continue
		}
		key := s.NationalID(r)
		if nationalIDs[key] {
			return DuplicateNationalID(s.Collection, key)
		}
		nationalIDs[key] = true
	}
	return nil
}
