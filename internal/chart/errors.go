package chart

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidEntry is wrapped by every entry validation failure.
var ErrInvalidEntry = errors.New("invalid chart entry")

// ConflictError is returned when an id cannot become an alias without
// rewriting history the caller has not asked to merge.
type ConflictError struct {
	Alias     string
	Canonical string
	Reason    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot alias %q to %q: %s", e.Alias, e.Canonical, e.Reason)
}

// InsufficientHistoryError means the snapshot stream is too short to fill the
// scoring window. Callers should wait for more weeks rather than fail.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("need at least %d weekly snapshots to chart, have %d", e.Need, e.Have)
}

// NonContiguousWindowError reports a gap, overlap or inverted period in the
// snapshot stream. Index is the position of the offending snapshot.
type NonContiguousWindowError struct {
	Index   int
	PrevEnd time.Time
	Start   time.Time
	End     time.Time
}

func (e *NonContiguousWindowError) Error() string {
	if !e.End.After(e.Start) {
		return fmt.Sprintf("snapshot %d: period %s to %s is empty or inverted",
			e.Index, e.Start.Format(dateFormat), e.End.Format(dateFormat))
	}
	return fmt.Sprintf("snapshot %d starts %s but previous week ended %s",
		e.Index, e.Start.Format(dateFormat), e.PrevEnd.Format(dateFormat))
}
