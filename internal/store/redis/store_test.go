package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := New(client, "")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStore_EmptyKeyIsEmptyDataset(t *testing.T) {
	s, _ := newTestStore(t)
	data, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, data.Doctors)
}

func TestStore_InTxPersists(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	err := s.InTx(ctx, store.Doctors, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Doctors().Create(ctx, domain.Doctor{Name: "Juan", NationalID: "1234567", Specialty: "Cardiology"})
		return err
	})
	require.NoError(t, err)

	raw, err := mr.Get(DefaultKey)
	require.NoError(t, err)
	require.Contains(t, raw, `"idDoctor":1`)

	err = s.View(ctx, func(ctx context.Context, tx store.Tx) error {
		d, err := tx.Doctors().Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "Juan", d.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_DuplicateRejectedWithoutWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.WriteAll(ctx, store.Dataset{Patients: []domain.Patient{{ID: 1, NationalID: "1234567"}}}))

	err := s.InTx(ctx, store.Patients, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Patients().Create(ctx, domain.Patient{NationalID: "1234567"})
		return err
	})
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	data, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, data.Patients, 1)
}

func TestStore_CorruptValue(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(DefaultKey, "nope"))
	_, err := s.ReadAll(context.Background())
	require.Error(t, err)
}

func TestStore_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.InTx(ctx, store.Patients, func(ctx context.Context, tx store.Tx) error {
				_, err := tx.Patients().Create(ctx, domain.Patient{NationalID: fmt.Sprintf("%07d", i)})
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		if err != nil {
			failed++
		}
	}
	data, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, data.Patients, writers-failed)
}

func TestStore_Ping(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
	mr.Close()
	require.Error(t, s.Ping(context.Background()))
}

func TestStore_WriteAllRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	err := s.WriteAll(ctx, store.Dataset{Doctors: []domain.Doctor{
		{ID: 3, NationalID: "1234567", Specialty: "Cardiology"},
		{ID: 3, NationalID: "7654321", Specialty: "Neurology"},
	}})
	require.ErrorIs(t, err, store.ErrDuplicateKey)
	require.False(t, mr.Exists(DefaultKey), "rejected dataset must not be stored")
}
