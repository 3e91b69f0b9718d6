// Package redis keeps the dataset as one JSON value and serialises writers
// with optimistic WATCH/MULTI transactions.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"clinic/backend/internal/store"
)

const (
	DefaultKey        = "clinic:dataset"
	defaultMaxRetries = 16
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Dial connects to redis and verifies the connection.
func Dial(ctx context.Context, opts Options) (*goredis.Client, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis store: empty address")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

type Store struct {
	client     *goredis.Client
	key        string
	maxRetries int
}

func New(client *goredis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key, maxRetries: defaultMaxRetries}
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func (s *Store) load(ctx context.Context, g getter) (store.Dataset, error) {
	raw, err := g.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.Dataset{}, nil
	}
	if err != nil {
		return store.Dataset{}, fmt.Errorf("redis store: get %s: %w", s.key, err)
	}
	var data store.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return store.Dataset{}, fmt.Errorf("redis store: decode %s: %w", s.key, err)
	}
	return data, nil
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	data, err := s.load(ctx, s.client)
	if err != nil {
		return err
	}
	return fn(ctx, store.NewDatasetTx(&data, true))
}

// InTx retries the callback when another writer changed the dataset between
// the read and the commit, so fn must not have side effects outside tx.
func (s *Store) InTx(ctx context.Context, lock store.Collection, fn store.TxFunc) error {
	txf := func(rtx *goredis.Tx) error {
		data, err := s.load(ctx, rtx)
		if err != nil {
			return err
		}
		tx := store.NewDatasetTx(&data, false)
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if !tx.Dirty() {
			return nil
		}
		raw, err := json.Marshal(data.Normalize())
		if err != nil {
			return fmt.Errorf("redis store: encode: %w", err)
		}
		_, err = rtx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, s.key, raw, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis store: %s write kept conflicting after %d attempts", lock, s.maxRetries)
}

func (s *Store) ReadAll(ctx context.Context) (store.Dataset, error) {
	data, err := s.load(ctx, s.client)
	if err != nil {
		return store.Dataset{}, err
	}
	return data.Normalize(), nil
}

func (s *Store) WriteAll(ctx context.Context, data store.Dataset) error {
	if err := data.Check(); err != nil {
		return err
	}
	raw, err := json.Marshal(data.Normalize())
	if err != nil {
		return fmt.Errorf("redis store: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
