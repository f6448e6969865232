package analysis

import (
	"github.com/ademuri/last-fm-charts/internal/cert"
	"github.com/ademuri/last-fm-charts/internal/chart"
)

const dateFormat = "2006-01-02"

// NewTrackReport gathers every derived statistic for t.
func NewTrackReport(t *chart.Track, aliases []string, chartLength int) TrackReport {
	entries := t.Entries()
	units := TrackUnits(t, chartLength)

	r := TrackReport{
		ID:            t.ID,
		Name:          t.Name,
		Artists:       t.Credit(),
		Album:         t.Album,
		Aliases:       aliases,
		Plays:         t.Plays,
		Units:         units,
		Certification: cert.Classify(units, cert.Track).ExpandedFull(),
		UnitsToNext:   cert.UnitsToNext(units, cert.Track),
		Chart: ChartStats{
			Peak:                  PeakLabel(entries),
			WeeksCharted:          len(entries),
			WeeksTop10:            WeeksCharted(entries, 10),
			WeeksNumberOne:        WeeksCharted(entries, 1),
			LongestStreak:         LongestStreak(entries, 0, false),
			LongestStreakWithGaps: LongestStreak(entries, 0, true),
			Points:                Points(entries, chartLength),
		},
	}

	r.Entries = entryReports(entries)
	return r
}

func entryReports(entries []chart.Entry) []EntryReport {
	var reports []EntryReport
	for i, e := range entries {
		var previous *chart.Entry
		if i > 0 && entries[i-1].End.Equal(e.Start) {
			previous = &entries[i-1]
		}
		reports = append(reports, EntryReport{
			Start: e.Start.Format(dateFormat),
			End:   e.End.Format(dateFormat),
			Rank:  e.Rank,
			Plays: e.Plays,
			Score: e.Score,
			Move:  Move(e, previous, i+1).String(),
		})
	}
	return reports
}

func NewCollectionReport(c *chart.Collection, chartLength int) CollectionReport {
	units := CollectionUnits(c, chartLength)
	entries := c.Entries()
	return CollectionReport{
		ID:              c.ID,
		Title:           c.Title,
		Artists:         chart.JoinArtists(c.Artists),
		Plays:           c.Plays(),
		Units:           units,
		Certification:   cert.Classify(units, cert.Collection).ExpandedSymbol(),
		Members:         len(c.Members()),
		ChartingMembers: ChartingMembers(c),
		Top10Hits:       Hits(c, 10),
		TopMemberPeak:   TopMemberPeak(c),
		Peak:            PeakLabel(entries),
		WeeksCharted:    len(entries),
		WeeksNumberOne:  WeeksCharted(entries, 1),
		Entries:         entryReports(entries),
	}
}
