package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

// Store keeps each collection in its own table. Writers of one collection
// are serialised with a transaction-scoped advisory lock.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// PoolConfig bounds the database/sql pool. Zero values keep the driver
// defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Open parses databaseURL as a pgx connection string, opens a pool over it
// and checks that the server answers.
func Open(ctx context.Context, databaseURL string, pool PoolConfig) (*Store, error) {
	connCfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse url: %w", err)
	}
	sqlDB := stdlib.OpenDB(*connCfg)

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres store: ping %s: %w", connCfg.Host, err)
	}
	return New(bun.NewDB(sqlDB, pgdialect.New())), nil
}

type pgTx struct {
	db       bun.IDB
	readOnly bool
}

func (t pgTx) Patients() store.Table[domain.Patient] {
	return table[domain.Patient]{db: t.db, schema: store.PatientSchema, readOnly: t.readOnly}
}

func (t pgTx) Doctors() store.Table[domain.Doctor] {
	return table[domain.Doctor]{db: t.db, schema: store.DoctorSchema, readOnly: t.readOnly}
}

func (t pgTx) Appointments() store.Table[domain.Appointment] {
	return table[domain.Appointment]{db: t.db, schema: store.AppointmentSchema, readOnly: t.readOnly}
}

var snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	return s.db.RunInTx(ctx, snapshot, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, pgTx{db: tx, readOnly: true})
	})
}

func (s *Store) InTx(ctx context.Context, lock store.Collection, fn store.TxFunc) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCollection(ctx, tx, lock); err != nil {
			return err
		}
		return fn(ctx, pgTx{db: tx})
	})
}

func lockCollection(ctx context.Context, tx bun.Tx, c store.Collection) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "clinic:"+string(c)).Exec(ctx)
	return err
}

func (s *Store) ReadAll(ctx context.Context) (store.Dataset, error) {
	var data store.Dataset
	err := s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if data.Patients, err = tx.Patients().List(ctx); err != nil {
			return err
		}
		if data.Doctors, err = tx.Doctors().List(ctx); err != nil {
			return err
		}
		data.Appointments, err = tx.Appointments().List(ctx)
		return err
	})
	if err != nil {
		return store.Dataset{}, err
	}
	return data.Normalize(), nil
}

// WriteAll replaces the content of every table in one transaction.
func (s *Store) WriteAll(ctx context.Context, data store.Dataset) error {
	if err := data.Check(); err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range store.Collections {
			if err := lockCollection(ctx, tx, c); err != nil {
				return err
			}
		}
		if err := replaceAll(ctx, tx, data.Patients); err != nil {
			return err
		}
		if err := replaceAll(ctx, tx, data.Doctors); err != nil {
			return err
		}
		return replaceAll(ctx, tx, data.Appointments)
	})
}

func replaceAll[T any](ctx context.Context, tx bun.Tx, rows []T) error {
	if _, err := tx.NewDelete().Model((*T)(nil)).Where("TRUE").Exec(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return mapWriteError(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
