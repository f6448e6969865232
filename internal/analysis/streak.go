// Package analysis derives chart statistics from entry histories.
package analysis

import (
	"slices"
	"sort"
	"time"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

const week = 7 * 24 * time.Hour

// within keeps the entries ranked top or better. top <= 0 keeps everything.
func within(entries []chart.Entry, top int) []chart.Entry {
	if top <= 0 {
		return slices.Clone(entries)
	}
	var kept []chart.Entry
	for _, e := range entries {
		if e.Rank <= top {
			kept = append(kept, e)
		}
	}
	return kept
}

// Peak is the best rank ever reached, or 0 for no entries.
func Peak(entries []chart.Entry) int {
	peak := 0
	for _, e := range entries {
		if peak == 0 || e.Rank < peak {
			peak = e.Rank
		}
	}
	return peak
}

// PeakWeeks is the number of weeks spent at the peak.
func PeakWeeks(entries []chart.Entry) int {
	peak := Peak(entries)
	n := 0
	for _, e := range entries {
		if e.Rank == peak {
			n++
		}
	}
	return n
}

func WeeksCharted(entries []chart.Entry, top int) int {
	return len(within(entries, top))
}

// WeeksBefore counts the entries that ended on or before end.
func WeeksBefore(entries []chart.Entry, end time.Time) int {
	n := 0
	for _, e := range entries {
		if !e.End.After(end) {
			n++
		}
	}
	return n
}

// LongestStreak is the length of the longest run of consecutive weeks in the
// top positions. A week continues the run when it starts where the previous
// one ended. With allowGap, a single missing week between two entries does not
// break the run, though it is not counted.
func LongestStreak(entries []chart.Entry, top int, allowGap bool) int {
	run := within(entries, top)
	if len(run) == 0 {
		return 0
	}
	sort.Slice(run, func(i, j int) bool { return run[i].End.Before(run[j].End) })

	longest, current := 1, 1
	for i := 1; i < len(run); i++ {
		gap := run[i].Start.Sub(run[i-1].End)
		if gap == 0 || (allowGap && gap > 0 && gap <= week) {
			current++
		} else {
			current = 1
		}
		longest = max(longest, current)
	}
	return longest
}

// StreakRow is one line of a streak leaderboard.
type StreakRow struct {
	Track *chart.Track
	Weeks int
}

// Streaks ranks tracks by their longest streak, longest first, ties broken by
// name. Tracks without a streak are left out and limit <= 0 keeps every row.
func Streaks(tracks []*chart.Track, top int, allowGap bool, limit int) []StreakRow {
	var rows []StreakRow
	for _, t := range tracks {
		if n := LongestStreak(t.Entries(), top, allowGap); n > 0 {
			rows = append(rows, StreakRow{Track: t, Weeks: n})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Weeks != rows[j].Weeks {
			return rows[i].Weeks > rows[j].Weeks
		}
		return rows[i].Track.Name < rows[j].Track.Name
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
