// package repositories provides the persistence layer for forecast history.
//
// Forecast runs are stored in SQLite so past results can be listed and
// compared without re-fetching listening history.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lamarqs/aria/internal/mood"
	"github.com/lamarqs/aria/internal/shared"
)

// ForecastRun is a persisted forecast result.
type ForecastRun struct {
	ID        string
	Source    string
	Dominant  mood.Mood
	Total     int
	AvgTempo  float64
	Shares    []mood.Share
	CreatedAt time.Time
}

// ForecastRepository persists [ForecastRun] records.
type ForecastRepository struct {
	db *sql.DB
}

// NewForecastRepository creates a repository with the given database connection
func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Create inserts a forecast run with a generated ID.
func (r *ForecastRepository) Create(source string, forecast *mood.Forecast) (*ForecastRun, error) {
	shares, err := json.Marshal(forecast.Shares)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shares: %w", err)
	}

	run := &ForecastRun{
		ID:        shared.GenerateID(),
		Source:    source,
		Dominant:  forecast.Dominant,
		Total:     forecast.Total,
		AvgTempo:  forecast.AvgTempo,
		Shares:    forecast.Shares,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO forecasts (id, source, dominant, total, avg_tempo, shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, run.ID, run.Source, string(run.Dominant), run.Total, run.AvgTempo, string(shares), run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert forecast: %w", err)
	}

	return run, nil
}

// List returns the most recent forecast runs, newest first.
func (r *ForecastRepository) List(limit int) ([]ForecastRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, source, dominant, total, avg_tempo, shares, created_at
		FROM forecasts
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var runs []ForecastRun
	for rows.Next() {
		var run ForecastRun
		var dominant, shares string
		if err := rows.Scan(&run.ID, &run.Source, &dominant, &run.Total, &run.AvgTempo, &shares, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		run.Dominant = mood.Mood(dominant)
		if err := json.Unmarshal([]byte(shares), &run.Shares); err != nil {
			return nil, fmt.Errorf("failed to decode shares: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get retrieves a single forecast run by ID.
func (r *ForecastRepository) Get(id string) (*ForecastRun, error) {
	query := `
		SELECT id, source, dominant, total, avg_tempo, shares, created_at
		FROM forecasts
		WHERE id = ?
	`

	var run ForecastRun
	var dominant, shares string
	err := r.db.QueryRow(query, id).Scan(&run.ID, &run.Source, &dominant, &run.Total, &run.AvgTempo, &shares, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast: %w", err)
	}

	run.Dominant = mood.Mood(dominant)
	if err := json.Unmarshal([]byte(shares), &run.Shares); err != nil {
		return nil, fmt.Errorf("failed to decode shares: %w", err)
	}
	return &run, nil
}
