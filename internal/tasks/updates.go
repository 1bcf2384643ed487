package tasks

import (
	"fmt"

	"github.com/lamarqs/aria/internal/mood"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchHistory Phase = iota
	FetchFeatures
	AnalyzeMoods
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchHistory:
		return "fetch_history"
	case FetchFeatures:
		return "fetch_features"
	case AnalyzeMoods:
		return "analyze_moods"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchHistoryUpdate(step, total int, source HistorySource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s listening history...", source),
	}
}

func fetchFeaturesUpdate(step, total, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching audio features for %d tracks...", trackCount),
	}
}

func analyzeUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeMoods,
		Step:    step,
		Total:   total,
		Message: "Classifying moods...",
	}
}

func doneUpdate(step, total int, forecast *mood.Forecast) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Forecast ready: %s (%d tracks)", forecast.Dominant, forecast.Total),
		Data:    forecast,
	}
}
