// Package file keeps the whole dataset in one JSON document.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"clinic/backend/internal/store"
)

type Store struct {
	fs   afero.Fs
	path string

	// mu covers every collection: the document is rewritten whole.
	mu sync.RWMutex
}

// Open prepares a store at path on fsys. The file itself is created by the
// first write; a missing file reads as an empty dataset.
func Open(fsys afero.Fs, path string) (*Store, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}
	return &Store{fs: fsys, path: path}, nil
}

func (s *Store) View(ctx context.Context, fn store.TxFunc) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	return fn(ctx, store.NewDatasetTx(&data, true))
}

func (s *Store) InTx(ctx context.Context, lock store.Collection, fn store.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
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
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(data)
}

func (s *Store) ReadAll(ctx context.Context) (store.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := s.read()
	if err != nil {
		return store.Dataset{}, err
	}
	return data.Normalize(), nil
}

func (s *Store) WriteAll(ctx context.Context, data store.Dataset) error {
	if err := data.Check(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(data)
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.fs.Stat(filepath.Dir(s.path))
	return err
}

func (s *Store) Close() error { return nil }

func (s *Store) read() (store.Dataset, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return store.Dataset{}, nil
		}
		return store.Dataset{}, fmt.Errorf("file store: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return store.Dataset{}, nil
	}

	var data store.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return store.Dataset{}, fmt.Errorf("file store: decode %s: %w", s.path, err)
	}
	return data, nil
}

// write replaces the document through a temp file in the same directory so a
// reader never sees a partial document.
func (s *Store) write(data store.Dataset) error {
	raw, err := json.MarshalIndent(data.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("file store: close: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
