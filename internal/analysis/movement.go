package analysis

import (
	"strconv"
	"strings"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

type MoveKind int

const (
	MoveNew MoveKind = iota
	MoveReentry
	MoveSteady
	MoveUp
	MoveDown
)

// Movement describes how a track moved between two chart weeks.
type Movement struct {
	Kind MoveKind
	// Places moved, always positive for MoveUp and MoveDown.
	Places int
}

func (m Movement) String() string {
	switch m.Kind {
	case MoveNew:
		return "NEW"
	case MoveReentry:
		return "RE"
	case MoveUp:
		return "▲" + strconv.Itoa(m.Places)
	case MoveDown:
		return "▼" + strconv.Itoa(m.Places)
	default:
		return "="
	}
}

// Move compares this week's entry to last week's. previous is nil when the
// track did not chart last week; weeksCharted is the track's total weeks
// including the current one.
func Move(current chart.Entry, previous *chart.Entry, weeksCharted int) Movement {
	if previous == nil {
		if weeksCharted <= 1 {
			return Movement{Kind: MoveNew}
		}
		return Movement{Kind: MoveReentry}
	}

	diff := previous.Rank - current.Rank
	switch {
	case diff > 0:
		return Movement{Kind: MoveUp, Places: diff}
	case diff < 0:
		return Movement{Kind: MoveDown, Places: -diff}
	default:
		return Movement{Kind: MoveSteady}
	}
}

var superscripts = strings.NewReplacer(
	"0", "⁰", "1", "¹", "2", "²", "3", "³", "4", "⁴",
	"5", "⁵", "6", "⁶", "7", "⁷", "8", "⁸", "9", "⁹",
)

// PeakLabel is the peak as chart sheets print it. A top 10 peak held for more
// than one week carries its week count in superscript, as in "1³".
func PeakLabel(entries []chart.Entry) string {
	peak := Peak(entries)
	if peak == 0 {
		return "-"
	}
	label := strconv.Itoa(peak)
	if weeks := PeakWeeks(entries); peak <= 10 && weeks > 1 {
		label += superscripts.Replace(strconv.Itoa(weeks))
	}
	return label
}
