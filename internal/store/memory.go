package store

import (
	"context"
	"slices"

	"clinic/backend/internal/domain"
)

// DatasetTx is a Tx over an in-memory dataset. Backends that persist the
// whole dataset at once load it, run the callback against a DatasetTx and
// write it back when Dirty reports a change.
type DatasetTx struct {
	data     *Dataset
	readOnly bool
	dirty    bool
}

func NewDatasetTx(data *Dataset, readOnly bool) *DatasetTx {
	return &DatasetTx{data: data, readOnly: readOnly}
}

func (t *DatasetTx) Dirty() bool { return t.dirty }

func (t *DatasetTx) Patients() Table[domain.Patient] {
	return &sliceTable[domain.Patient]{tx: t, rows: &t.data.Patients, schema: PatientSchema}
}

func (t *DatasetTx) Doctors() Table[domain.Doctor] {
	return &sliceTable[domain.Doctor]{tx: t, rows: &t.data.Doctors, schema: DoctorSchema}
}

func (t *DatasetTx) Appointments() Table[domain.Appointment] {
	return &sliceTable[domain.Appointment]{tx: t, rows: &t.data.Appointments, schema: AppointmentSchema}
}

type sliceTable[T any] struct {
	tx     *DatasetTx
	rows   *[]T
	schema Schema[T]
}

func (t *sliceTable[T]) List(ctx context.Context) ([]T, error) {
	return slices.Clone(*t.rows), nil
}

func (t *sliceTable[T]) Get(ctx context.Context, id int) (T, error) {
	if i := t.index(id); i >= 0 {
		return (*t.rows)[i], nil
	}
	var zero T
	return zero, NotFound(t.schema.Collection, id)
}

func (t *sliceTable[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if t.tx.readOnly {
		return zero, ErrReadOnly
	}
	if err := t.checkUnique(rec, -1); err != nil {
		return zero, err
	}
	t.schema.SetID(&rec, t.schema.NextID(*t.rows))
	*t.rows = append(*t.rows, rec)
	t.tx.dirty = true
	return rec, nil
}

func (t *sliceTable[T]) Update(ctx context.Context, id int, rec T) (T, error) {
	var zero T
	if t.tx.readOnly {
		return zero, ErrReadOnly
	}
	i := t.index(id)
	if i < 0 {
		return zero, NotFound(t.schema.Collection, id)
	}
	if err := t.checkUnique(rec, i); err != nil {
		return zero, err
	}
	t.schema.SetID(&rec, id)
	(*t.rows)[i] = rec
	t.tx.dirty = true
	return rec, nil
}

func (t *sliceTable[T]) Delete(ctx context.Context, id int) error {
	if t.tx.readOnly {
		return ErrReadOnly
	}
	i := t.index(id)
	if i < 0 {
		return NotFound(t.schema.Collection, id)
	}
	*t.rows = slices.Delete(*t.rows, i, i+1)
	t.tx.dirty = true
	return nil
}

func (t *sliceTable[T]) index(id int) int {
	for i, r := range *t.rows {
		if t.schema.ID(r) == id {
			return i
		}
	}
	return -1
}

// checkUnique rejects rec when another record than the one at skip holds its
// national id.
func (t *sliceTable[T]) checkUnique(rec T, skip int) error {
	if t.schema.NationalID == nil {
		return nil
	}
	key := t.schema.NationalID(rec)
	for i, r := range *t.rows {
		if i != skip && t.schema.NationalID(r) == key {
			return DuplicateNationalID(t.schema.Collection, key)
		}
	}
	return nil
}
