package chart

import (
	"fmt"
)

// DefaultCollectionChartLength is the number of places on the weekly album
// chart.
const DefaultCollectionChartLength = 20

type CollectionChartConfig struct {
	// TrackChartLength values a member's place on the track chart at
	// TrackChartLength+1-rank points.
	TrackChartLength int `validate:"min=10,max=60"`
	// Length is the cutoff rank; ties at the cutoff all chart.
	Length int `validate:"min=1"`
}

func DefaultCollectionChartConfig() CollectionChartConfig {
	return CollectionChartConfig{
		TrackChartLength: DefaultConfig().ChartLength,
		Length:           DefaultCollectionChartLength,
	}
}

func (c CollectionChartConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid collection chart config: %w", err)
	}
	return nil
}

// ChartCollections ranks collections for a track week that has already been
// recorded, and records an entry on every collection within the cutoff.
//
// A collection scores the track chart points its members earned that week
// plus two per member play, counting plays of members past the track cutoff.
// Collections that score nothing are left out.
func ChartCollections(collections []*Collection, week Week, cfg CollectionChartConfig) (Week, error) {
	if err := cfg.Validate(); err != nil {
		return Week{}, err
	}

	plays := make(map[string]int64, len(week.Positions))
	for _, p := range week.Positions {
		plays[p.ID] = p.Plays
	}

	byID := make(map[string]*Collection, len(collections))
	var positions []Position
	for _, c := range collections {
		if _, dup := byID[c.ID]; dup {
			continue
		}
		var points, weekPlays int64
		for _, m := range c.members {
			weekPlays += plays[m.ID]
			if e, ok := m.Entry(week.End); ok {
				if p := cfg.TrackChartLength + 1 - e.Rank; p > 0 {
					points += int64(p)
				}
			}
		}
		score := points + 2*weekPlays
		if score <= 0 {
			continue
		}
		byID[c.ID] = c
		positions = append(positions, Position{ID: c.ID, Score: score, Plays: weekPlays})
	}
	Rank(positions)

	for i := range positions {
		p := &positions[i]
		if p.Rank > cfg.Length {
			continue
		}
		entry, err := NewEntry(week.Start, week.End, p.Plays, p.Rank, p.Score, EntryPolicy{})
		if err != nil {
			return Week{}, fmt.Errorf("recording collection %q: %w", p.ID, err)
		}
		byID[p.ID].AddEntry(entry)
		p.Charted = true
	}
	return Week{Start: week.Start, End: week.End, Positions: positions}, nil
}
