package store

import (
	"context"

	"clinic/backend/internal/domain"
)

type Collection string

const (
	Patients     Collection = "patients"
	Doctors      Collection = "doctors"
	Appointments Collection = "appointments"
)

var Collections = []Collection{Patients, Doctors, Appointments}

// IDField is the identifier field name of records in c.
func (c Collection) IDField() string {
	switch c {
	case Patients:
		return "idPatient"
	case Doctors:
		return "idDoctor"
	case Appointments:
		return "idAppointment"
	}
	return ""
}

func (c Collection) Singular() string {
	switch c {
	case Patients:
		return "patient"
	case Doctors:
		return "doctor"
	case Appointments:
		return "appointment"
	}
	return string(c)
}

// Table gives access to one collection inside a transaction.
type Table[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	// Create assigns the next identifier (max + 1) and stores rec.
	Create(ctx context.Context, rec T) (T, error)
	// Update replaces the stored record with rec, keeping identifier id.
	Update(ctx context.Context, id int, rec T) (T, error)
	Delete(ctx context.Context, id int) error
}

type Tx interface {
	Patients() Table[domain.Patient]
	Doctors() Table[domain.Doctor]
	Appointments() Table[domain.Appointment]
}

type TxFunc func(ctx context.Context, tx Tx) error

// Store is a record store holding the three collections. Writers of the same
// collection are serialised by InTx; a failed callback leaves no trace.
type Store interface {
	View(ctx context.Context, fn TxFunc) error
	InTx(ctx context.Context, lock Collection, fn TxFunc) error

	ReadAll(ctx context.Context) (Dataset, error)
	WriteAll(ctx context.Context, data Dataset) error

	Ping(ctx context.Context) error
	Close() error
}

// Dataset is the whole content of a store.
type Dataset struct {
	Patients     []domain.Patient     `json:"patients"`
	Doctors      []domain.Doctor      `json:"doctors"`
	Appointments []domain.Appointment `json:"appointments"`
}

// Normalize replaces nil collections with empty ones.
func (d Dataset) Normalize() Dataset {
	if d.Patients == nil {
		d.Patients = []domain.Patient{}
	}
	if d.Doctors == nil {
		d.Doctors = []domain.Doctor{}
	}
	if d.Appointments == nil {
		d.Appointments = []domain.Appointment{}
	}
	return d
}

// Check verifies the keys of every collection: identifiers are positive and
// unique, and national ids are unique. Backends run it before WriteAll
// replaces their content.
func (d Dataset) Check() error {
	if err := PatientSchema.checkKeys(d.Patients); err != nil {
		return err
	}
	if err := DoctorSchema.checkKeys(d.Doctors); err != nil {
		return err
	}
	return AppointmentSchema.checkKeys(d.Appointments)
}
