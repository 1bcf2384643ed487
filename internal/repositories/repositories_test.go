package repositories

import (
	"database/sql"
	"testing"

	"github.com/lamarqs/aria/internal/mood"
	"github.com/lamarqs/aria/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testForecast() *mood.Forecast {
	return &mood.Forecast{
		Dominant: mood.Happy,
		Total:    10,
		AvgTempo: 112,
		Shares: []mood.Share{
			{Mood: mood.Happy, Count: 6, Percent: 60},
			{Mood: mood.Mellow, Count: 4, Percent: 40},
		},
	}
}

func TestForecastRepository(t *testing.T) {
	t.Run("create then get round-trips", func(t *testing.T) {
		repo := NewForecastRepository(newTestDB(t))

		created, err := repo.Create("recent", testForecast())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected generated ID")
		}

		got, err := repo.Get(created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected run, got nil")
		}
		if got.Dominant != mood.Happy || got.Total != 10 || got.Source != "recent" {
			t.Errorf("unexpected run: %+v", got)
		}
		if len(got.Shares) != 2 || got.Shares[0].Mood != mood.Happy {
			t.Errorf("shares did not round-trip: %+v", got.Shares)
		}
	})

	t.Run("get unknown id returns nil", func(t *testing.T) {
		repo := NewForecastRepository(newTestDB(t))

		got, err := repo.Get("missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("list returns newest first", func(t *testing.T) {
		repo := NewForecastRepository(newTestDB(t))

		for range 3 {
			if _, err := repo.Create("top", testForecast()); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("got %d runs, want 2", len(runs))
		}
	})
}
