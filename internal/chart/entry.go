package chart

import (
	"fmt"
	"slices"
	"time"
)

const dateFormat = "2006-01-02"

// EntryPolicy controls which chart appearances may be recorded as entries.
type EntryPolicy struct {
	// MinPlays is the fewest plays a week may have and still be recorded.
	MinPlays int64 `validate:"gte=0"`
}

// DefaultEntryPolicy records any week with at least one play.
var DefaultEntryPolicy = EntryPolicy{MinPlays: 1}

// Entry is one chart appearance of one entity. It is a value; history is
// changed only by replacing whole entries.
type Entry struct {
	Start time.Time
	End   time.Time
	Plays int64
	Rank  int
	Score int64
}

// NewEntry validates and builds an entry.
func NewEntry(start, end time.Time, plays int64, rank int, score int64, policy EntryPolicy) (Entry, error) {
	if rank < 1 {
		return Entry{}, fmt.Errorf("%w: rank %d is below 1", ErrInvalidEntry, rank)
	}
	if !end.After(start) {
		return Entry{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidEntry, end.Format(dateFormat), start.Format(dateFormat))
	}
	if plays < policy.MinPlays {
		return Entry{}, fmt.Errorf("%w: %d plays is below the minimum of %d",
			ErrInvalidEntry, plays, policy.MinPlays)
	}
	return Entry{Start: start, End: end, Plays: plays, Rank: rank, Score: score}, nil
}

func (e Entry) String() string {
	return fmt.Sprintf("#%d %s to %s (%d plays, %d pts)",
		e.Rank, e.Start.Format(dateFormat), e.End.Format(dateFormat), e.Plays, e.Score)
}

// Entries is a chart history ordered by end date with at most one entry per
// end date. The zero value is empty and ready to use.
type Entries struct {
	list []Entry
}

// Add inserts e. When an entry with the same end date exists, the one with
// more plays is kept. It reports whether e was stored.
func (h *Entries) Add(e Entry) bool {
	i, found := slices.BinarySearchFunc(h.list, e.End, func(x Entry, end time.Time) int {
		return x.End.Compare(end)
	})
	if found {
		if e.Plays <= h.list[i].Plays {
			return false
		}
		h.list[i] = e
		return true
	}
	h.list = slices.Insert(h.list, i, e)
	return true
}

// Get returns the entry for the period ending on end.
func (h *Entries) Get(end time.Time) (Entry, bool) {
	i, found := slices.BinarySearchFunc(h.list, end, func(x Entry, end time.Time) int {
		return x.End.Compare(end)
	})
	if !found {
		return Entry{}, false
	}
	return h.list[i], true
}

// All returns a copy of the history, oldest first.
func (h *Entries) All() []Entry {
	return slices.Clone(h.list)
}

func (h *Entries) Len() int {
	return len(h.list)
}

// Last returns the most recent entry.
func (h *Entries) Last() (Entry, bool) {
	if len(h.list) == 0 {
		return Entry{}, false
	}
	return h.list[len(h.list)-1], true
}

// Clear drops the whole history.
func (h *Entries) Clear() {
	h.list = nil
}
