package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

// ForgottenConfig selects tracks that charted heavily but have not charted
// since LastChartedBefore.
type ForgottenConfig struct {
	LastChartedBefore time.Time
	ResultsPerBand    int
	SortBy            string // "dormancy" or "weeks"
}

type ForgottenTrack struct {
	Track         *chart.Track
	WeeksCharted  int
	Peak          int
	LastCharted   time.Time
	DaysSinceLast int
	Band          string
}

const (
	BandObsession = "Obsession"
	BandStrong    = "Strong"
	BandModerate  = "Moderate"

	// Weeks on chart needed for each band.
	ThresholdObsession = 20
	ThresholdStrong    = 10
	ThresholdModerate  = 4
)

// Bands lists the bands from strongest to weakest.
var Bands = []string{BandObsession, BandStrong, BandModerate}

// GetThreshold returns the minimum weeks on chart for a band.
func GetThreshold(band string) int {
	switch band {
	case BandObsession:
		return ThresholdObsession
	case BandStrong:
		return ThresholdStrong
	case BandModerate:
		return ThresholdModerate
	}
	return 0
}

func determineBand(weeks int) string {
	for _, band := range Bands {
		if weeks >= GetThreshold(band) {
			return band
		}
	}
	return ""
}

// Forgotten groups dormant tracks by band. now is used for DaysSinceLast.
func Forgotten(tracks []*chart.Track, cfg ForgottenConfig, now time.Time) map[string][]ForgottenTrack {
	results := make(map[string][]ForgottenTrack)

	for _, t := range tracks {
		entries := t.Entries()
		if len(entries) == 0 {
			continue
		}
		last := entries[len(entries)-1].End
		if !last.Before(cfg.LastChartedBefore) {
			continue
		}

		f := ForgottenTrack{
			Track:         t,
			WeeksCharted:  len(entries),
			Peak:          Peak(entries),
			LastCharted:   last,
			DaysSinceLast: int(now.Sub(last).Hours() / 24),
		}
		f.Band = determineBand(f.WeeksCharted)
		if f.Band == "" {
			continue
		}
		results[f.Band] = append(results[f.Band], f)
	}

	for band := range results {
		sortForgotten(results[band], cfg.SortBy)
		if cfg.ResultsPerBand > 0 && len(results[band]) > cfg.ResultsPerBand {
			results[band] = results[band][:cfg.ResultsPerBand]
		}
	}
	return results
}

func sortForgotten(tracks []ForgottenTrack, sortBy string) {
	sort.SliceStable(tracks, func(i, j int) bool {
		if sortBy == "weeks" {
			return tracks[i].WeeksCharted > tracks[j].WeeksCharted
		}
		// Longest dormancy first.
		return tracks[i].DaysSinceLast > tracks[j].DaysSinceLast
	})
}
