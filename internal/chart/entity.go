package chart

import (
	"slices"
	"strings"
	"time"
)

// Track is a single chartable song. ID never changes once assigned.
type Track struct {
	ID      string
	Name    string
	Artists []string
	Album   string

	// Plays is the lifetime play count across every id resolving to the
	// track. It is refreshed from listening data, never derived from entries.
	Plays int64

	entries Entries
}

// NewTrack returns a track with no chart history.
func NewTrack(id, name string, artists ...string) *Track {
	if name == "" {
		name = id
	}
	return &Track{ID: id, Name: name, Artists: artists}
}

// AddEntry records a chart week, keeping the higher-play entry on a clash.
func (t *Track) AddEntry(e Entry) bool {
	return t.entries.Add(e)
}

// Entries returns a copy of the track's chart history, oldest first.
func (t *Track) Entries() []Entry {
	return t.entries.All()
}

// Entry returns the week that ended on the given day, if the track charted.
func (t *Track) Entry(end time.Time) (Entry, bool) {
	return t.entries.Get(end)
}

// Weeks is the number of weeks the track has charted.
func (t *Track) Weeks() int {
	return t.entries.Len()
}

// HasHistory reports whether the track has charted at least once.
func (t *Track) HasHistory() bool {
	return t.entries.Len() > 0
}

// ClearEntries truncates chart history; identity and plays are kept.
func (t *Track) ClearEntries() {
	t.entries.Clear()
}

// Credit joins the artists the way chart sheets show them:
// "a", "a & b", "a, b & c".
func (t *Track) Credit() string {
	return JoinArtists(t.Artists)
}

func (t *Track) String() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Name + " by " + t.Credit()
}

// JoinArtists renders an artist list for display.
func JoinArtists(artists []string) string {
	switch len(artists) {
	case 0:
		return ""
	case 1:
		return artists[0]
	case 2:
		return artists[0] + " & " + artists[1]
	}
	n := len(artists)
	return strings.Join(artists[:n-2], ", ") + ", " + artists[n-2] + " & " + artists[n-1]
}

// Collection is an album-like group of tracks. Its plays and units come from
// its members; its own entries are only set by callers that chart albums.
type Collection struct {
	ID      string
	Title   string
	Artists []string

	members []*Track
	entries Entries
}

// NewCollection returns an empty collection.
func NewCollection(id, title string, artists ...string) *Collection {
	return &Collection{ID: id, Title: title, Artists: artists}
}

// AddMember appends t unless a track with the same id is already a member.
func (c *Collection) AddMember(t *Track) {
	if slices.ContainsFunc(c.members, func(m *Track) bool { return m.ID == t.ID }) {
		return
	}
	c.members = append(c.members, t)
}

// Members returns the member tracks in insertion order. The slice is a copy;
// the tracks are shared.
func (c *Collection) Members() []*Track {
	return slices.Clone(c.members)
}

// Plays sums the lifetime plays of every member.
func (c *Collection) Plays() int64 {
	var total int64
	for _, m := range c.members {
		total += m.Plays
	}
	return total
}

func (c *Collection) AddEntry(e Entry) bool {
	return c.entries.Add(e)
}

func (c *Collection) Entries() []Entry {
	return c.entries.All()
}

// Entry returns the album chart week that ended on the given day.
func (c *Collection) Entry(end time.Time) (Entry, bool) {
	return c.entries.Get(end)
}

func (c *Collection) ClearEntries() {
	c.entries.Clear()
}

func (c *Collection) String() string {
	if len(c.Artists) == 0 {
		return c.Title
	}
	return c.Title + " by " + JoinArtists(c.Artists)
}
