package migrate

import (
	"testing"

	"github.com/CaptainBerkay35/taskmanager/internal/db"
)

func TestEmbeddedStepsAreVersioned(t *testing.T) {
	steps, err := load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(steps) == 0 {
		t.Fatalf("no embedded migrations")
	}
	if steps[0].version != 1 {
		t.Fatalf("first step should be version 1, got %d", steps[0].version)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].version <= steps[i-1].version {
			t.Fatalf("steps out of order: %s after %s", steps[i].name, steps[i-1].name)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := Migrate(conn); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	steps, err := load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var v int
	if err := conn.QueryRow(`SELECT version FROM schema_version`).Scan(&v); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if want := steps[len(steps)-1].version; v != want {
		t.Fatalf("schema at version %d, want %d", v, want)
	}
}
