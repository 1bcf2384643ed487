// package mood classifies tracks into moods from their audio features and
// aggregates listening history into a forecast.
//
// Classification is a fixed threshold table evaluated in order; the first
// matching row wins. Aggregation counts classified tracks per mood and
// ranks moods by share.
package mood

import (
	"fmt"
	"sort"

	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
)

// Mood is a coarse emotional bucket for a track.
type Mood string

const (
	Hype   Mood = "Hype"
	Happy  Mood = "Happy"
	Sad    Mood = "Sad"
	Mellow Mood = "Mellow"
	Mixed  Mood = "Mixed"
)

// Classify maps audio features to a mood. Rows are evaluated top to
// bottom; a track matching none of them is Mixed.
func Classify(f services.AudioFeatures) Mood {
	switch {
	case f.Energy >= 0.75 && f.Danceability >= 0.6:
		return Hype
	case f.Valence >= 0.65 && f.Energy >= 0.5:
		return Happy
	case f.Valence <= 0.35 && f.Energy <= 0.5:
		return Sad
	case f.Energy <= 0.4:
		return Mellow
	default:
		return Mixed
	}
}

// Share is one mood's slice of a forecast.
type Share struct {
	Mood    Mood    `json:"mood"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Forecast summarizes a set of classified tracks.
type Forecast struct {
	Dominant Mood    `json:"dominant"`
	Total    int     `json:"total"`
	Shares   []Share `json:"shares"`
	AvgTempo float64 `json:"avg_tempo"`
}

// Analyze classifies each feature set and aggregates the result.
// Shares are sorted by count descending, ties broken by mood name for
// stable output.
func Analyze(features []services.AudioFeatures) (*Forecast, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no audio features to analyze", shared.ErrInvalidInput)
	}

	counts := make(map[Mood]int)
	var tempoSum float64
	for _, f := range features {
		counts[Classify(f)]++
		tempoSum += f.Tempo
	}

	shares := make([]Share, 0, len(counts))
	for mood, count := range counts {
		shares = append(shares, Share{
			Mood:    mood,
			Count:   count,
			Percent: float64(count) / float64(len(features)) * 100,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Mood < shares[j].Mood
	})

	return &Forecast{
		Dominant: shares[0].Mood,
		Total:    len(features),
		Shares:   shares,
		AvgTempo: tempoSum / float64(len(features)),
	}, nil
}
