// package tasks implements the mood forecast pipeline.
//
// The core abstraction is ForecastEngine, which fetches listening history,
// resolves audio features, and aggregates them into a forecast.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/lamarqs/aria/internal/mood"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
)

// featureBatchSize is the upstream's cap on audio-feature lookups per call.
const featureBatchSize = 100

// HistorySource selects which listening history feeds the forecast.
type HistorySource string

const (
	SourceRecent HistorySource = "recent"
	SourceTop    HistorySource = "top"
)

// ForecastResult contains all data from a forecast run.
type ForecastResult struct {
	Source   HistorySource          // History surface the tracks came from
	Tracks   []services.Track       // Tracks that fed the forecast
	Features []services.AudioFeatures
	Forecast *mood.Forecast
}

// HistoryClient is the slice of the API client the engine needs.
type HistoryClient interface {
	RecentlyPlayed(ctx context.Context, limit int) ([]services.Track, error)
	TopTracks(ctx context.Context, limit int, timeRange string) ([]services.Track, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]services.AudioFeatures, error)
}

// ForecastEngine runs the history → features → forecast pipeline.
type ForecastEngine struct {
	client HistoryClient
}

// NewForecastEngine creates an engine backed by the given client.
func NewForecastEngine(client HistoryClient) *ForecastEngine {
	return &ForecastEngine{client: client}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the pipeline.
func (e *ForecastEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run builds a forecast from the chosen history source.
func (e *ForecastEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, source HistorySource, limit int) (*ForecastResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: no API client configured", shared.ErrMissingConfig)
	}

	e.sendProgress(progress, fetchHistoryUpdate(1, 3, source))

	var tracks []services.Track
	var err error
	switch source {
	case SourceRecent:
		tracks, err = e.client.RecentlyPlayed(ctx, limit)
	case SourceTop:
		tracks, err = e.client.TopTracks(ctx, limit, "short_term")
	default:
		return nil, fmt.Errorf("%w: unknown history source %q", shared.ErrInvalidArgument, source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listening history: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no listening history available", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, fetchFeaturesUpdate(2, 3, len(tracks)))

	features, err := e.fetchFeatures(ctx, tracks)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, analyzeUpdate(3, 3))

	forecast, err := mood.Analyze(features)
	if err != nil {
		return nil, err
	}

	result := &ForecastResult{
		Source:   source,
		Tracks:   tracks,
		Features: features,
		Forecast: forecast,
	}
	e.sendProgress(progress, doneUpdate(3, 3, forecast))
	return result, nil
}

// fetchFeatures resolves audio features in upstream-sized batches.
func (e *ForecastEngine) fetchFeatures(ctx context.Context, tracks []services.Track) ([]services.AudioFeatures, error) {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	features := make([]services.AudioFeatures, 0, len(ids))
	for start := 0; start < len(ids); start += featureBatchSize {
		end := min(start+featureBatchSize, len(ids))

		batch, err := e.client.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch audio features: %w", err)
		}
		features = append(features, batch...)
	}
	return features, nil
}
