package analysis

import (
	"github.com/ademuri/last-fm-charts/internal/cert"
	"github.com/ademuri/last-fm-charts/internal/chart"
)

// Points awards chartLength+1-rank for every entry, so a number one week on a
// 60 place chart is worth 60.
func Points(entries []chart.Entry, chartLength int) int64 {
	var total int64
	for _, e := range entries {
		if p := chartLength + 1 - e.Rank; p > 0 {
			total += int64(p)
		}
	}
	return total
}

// TrackUnits is two units per lifetime play plus chart points. A track that
// never charted has only its play units.
func TrackUnits(t *chart.Track, chartLength int) int64 {
	return 2*t.Plays + Points(t.Entries(), chartLength)
}

func TrackCert(t *chart.Track, chartLength int) cert.Certification {
	return cert.Classify(TrackUnits(t, chartLength), cert.Track)
}

// CollectionUnits sums the units of every member.
func CollectionUnits(c *chart.Collection, chartLength int) int64 {
	var total int64
	for _, m := range c.Members() {
		total += TrackUnits(m, chartLength)
	}
	return total
}

func CollectionCert(c *chart.Collection, chartLength int) cert.Certification {
	return cert.Classify(CollectionUnits(c, chartLength), cert.Collection)
}
