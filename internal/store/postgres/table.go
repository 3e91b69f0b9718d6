package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"clinic/backend/internal/store"
)

type table[T any] struct {
	db       bun.IDB
	schema   store.Schema[T]
	readOnly bool
}

func (t table[T]) List(ctx context.Context) ([]T, error) {
	rows := make([]T, 0)
	err := t.db.NewSelect().
		Model(&rows).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t table[T]) Get(ctx context.Context, id int) (T, error) {
	var rec T
	err := t.db.NewSelect().
		Model(&rec).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, store.NotFound(t.schema.Collection, id)
	}
	return rec, err
}

// Create relies on the caller holding the collection lock for the max + 1
// identifier to be stable.
func (t table[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if t.readOnly {
		return zero, store.ErrReadOnly
	}
	if err := t.checkUnique(ctx, rec, 0); err != nil {
		return zero, err
	}

	var next int
	err := t.db.NewSelect().
		Model((*T)(nil)).
		ColumnExpr("COALESCE(MAX(id), 0) + 1").
		Scan(ctx, &next)
	if err != nil {
		return zero, err
	}
	t.schema.SetID(&rec, next)

	if _, err := t.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return zero, mapWriteError(err)
	}
	return rec, nil
}

func (t table[T]) Update(ctx context.Context, id int, rec T) (T, error) {
	var zero T
	if t.readOnly {
		return zero, store.ErrReadOnly
	}
	if err := t.checkUnique(ctx, rec, id); err != nil {
		return zero, err
	}
	t.schema.SetID(&rec, id)

	res, err := t.db.NewUpdate().Model(&rec).WherePK().Exec(ctx)
	if err != nil {
		return zero, mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, err
	}
	if affected == 0 {
		return zero, store.NotFound(t.schema.Collection, id)
	}
	return rec, nil
}

func (t table[T]) Delete(ctx context.Context, id int) error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	res, err := t.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.NotFound(t.schema.Collection, id)
	}
	return nil
}

// checkUnique looks for another record (id other than skipID) holding the
// national id of rec. The unique index backs this up through mapWriteError.
func (t table[T]) checkUnique(ctx context.Context, rec T, skipID int) error {
	if t.schema.NationalID == nil {
		return nil
	}
	key := t.schema.NationalID(rec)
	q := t.db.NewSelect().
		Model((*T)(nil)).
		Where("national_id = ?", key)
	if skipID != 0 {
		q = q.Where("id <> ?", skipID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return store.DuplicateNationalID(t.schema.Collection, key)
	}
	return nil
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, store.ErrDuplicateKey)
	}
	return err
}
