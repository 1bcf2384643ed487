package auth

import (
	"testing"

	"github.com/lamarqs/aria/internal/shared"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func TestSQLiteStore(t *testing.T) {
	t.Run("Load Absent", func(t *testing.T) {
		store := newTestStore(t)

		_, ok, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected no record before first save")
		}
	})

	t.Run("Save Load RoundTrip", func(t *testing.T) {
		store := newTestStore(t)

		record := Record{
			AccessToken:  "access-abc",
			RefreshToken: "refresh-xyz",
			ExpiresAt:    1_800_000_000,
		}
		if err := store.Save(record); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		loaded, ok, err := store.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if !ok {
			t.Fatal("expected record to exist")
		}
		if loaded != record {
			t.Errorf("loaded record %+v does not equal saved record %+v", loaded, record)
		}
	})

	t.Run("Save Overwrites In Place", func(t *testing.T) {
		store := newTestStore(t)

		store.Save(Record{AccessToken: "old", RefreshToken: "r1", ExpiresAt: 100})
		store.Save(Record{AccessToken: "new", RefreshToken: "r2", ExpiresAt: 200})

		loaded, _, _ := store.Load()
		if loaded.AccessToken != "new" || loaded.RefreshToken != "r2" || loaded.ExpiresAt != 200 {
			t.Errorf("expected overwritten record, got %+v", loaded)
		}
	})

	t.Run("Clear Removes All Fields", func(t *testing.T) {
		store := newTestStore(t)

		store.Save(Record{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1})
		if err := store.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}

		_, ok, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected no record after clear")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("RoundTrip And Clear", func(t *testing.T) {
		store := NewMemoryStore()

		if _, ok, _ := store.Load(); ok {
			t.Error("expected empty store")
		}

		record := Record{AccessToken: "a", RefreshToken: "r", ExpiresAt: 42}
		store.Save(record)

		loaded, ok, _ := store.Load()
		if !ok || loaded != record {
			t.Errorf("expected %+v, got %+v (ok=%v)", record, loaded, ok)
		}

		store.Clear()
		if _, ok, _ := store.Load(); ok {
			t.Error("expected empty store after clear")
		}
	})
}
