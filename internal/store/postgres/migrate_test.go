package postgres

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"clinic/backend/migrations"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs.New() error = %v", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if version != 1 {
		t.Fatalf("first version = %d, want 1", version)
	}

	for {
		up, _, err := src.ReadUp(version)
		if err != nil {
			t.Fatalf("ReadUp(%d) error = %v", version, err)
		}
		body, err := io.ReadAll(up)
		up.Close()
		if err != nil {
			t.Fatalf("read up %d: %v", version, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			t.Fatalf("up migration %d is empty", version)
		}

		down, _, err := src.ReadDown(version)
		if err != nil {
			t.Fatalf("ReadDown(%d) error = %v", version, err)
		}
		down.Close()

		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			t.Fatalf("Next(%d) error = %v", version, err)
		}
		version = next
	}
}

func TestInitMigrationCreatesCollections(t *testing.T) {
	body, err := fs.ReadFile(migrations.FS, "0001_init.up.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, table := range []string{"patients", "doctors", "appointments"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("0001_init.up.sql does not create %s", table)
		}
	}

	down, err := fs.ReadFile(migrations.FS, "0001_init.down.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, table := range []string{"patients", "doctors", "appointments"} {
		if !strings.Contains(string(down), "DROP TABLE IF EXISTS "+table) {
			t.Fatalf("0001_init.down.sql does not drop %s", table)
		}
	}
}
