package analysis

import (
	"github.com/ademuri/last-fm-charts/internal/cert"
	"github.com/ademuri/last-fm-charts/internal/chart"
)

// Hits counts members that peaked at top or better. top <= 0 counts every
// member that charted.
func Hits(c *chart.Collection, top int) int {
	n := 0
	for _, m := range c.Members() {
		peak := Peak(m.Entries())
		if peak > 0 && (top <= 0 || peak <= top) {
			n++
		}
	}
	return n
}

func ChartingMembers(c *chart.Collection) int {
	return Hits(c, 0)
}

// TopMemberPeak is the best peak of any member, or 0 if none charted.
func TopMemberPeak(c *chart.Collection) int {
	best := 0
	for _, m := range c.Members() {
		if p := Peak(m.Entries()); p > 0 && (best == 0 || p < best) {
			best = p
		}
	}
	return best
}

// MembersCertified counts members certified at least minimum.
func MembersCertified(c *chart.Collection, chartLength int, minimum cert.Certification) int {
	n := 0
	for _, m := range c.Members() {
		if !TrackCert(m, chartLength).Less(minimum) {
			n++
		}
	}
	return n
}
