// Package cert classifies accumulated units into certification tiers.
package cert

import "cmp"

// Tier is a certification level. Tiers are ordered: a higher tier always
// outranks a lower one regardless of multiplier.
type Tier int

const (
	None Tier = iota
	Gold
	Platinum
	Diamond
)

func (t Tier) String() string {
	switch t {
	case Gold:
		return "Gold"
	case Platinum:
		return "Platinum"
	case Diamond:
		return "Diamond"
	default:
		return "Un-Certified"
	}
}

// Symbol is the shorthand used on chart sheets.
func (t Tier) Symbol() string {
	switch t {
	case Gold:
		return "●"
	case Platinum:
		return "▲"
	case Diamond:
		return "⬥"
	default:
		return "-"
	}
}

// Scale holds the unit thresholds for one kind of entity. Mid is also the
// size of one multiplier step.
type Scale struct {
	Entry int64
	Mid   int64
	High  int64
}

// Kind selects the scale to classify against.
type Kind int

const (
	Track Kind = iota
	Collection
)

var scales = map[Kind]Scale{
	Track:      {Entry: 100, Mid: 200, High: 2000},
	Collection: {Entry: 500, Mid: 1000, High: 10000},
}

func (k Kind) Scale() Scale {
	return scales[k]
}

func (k Kind) String() string {
	if k == Collection {
		return "collection"
	}
	return "track"
}

// Certification is a tier plus multiplier. Multiplier is 0 for None, Gold and
// a single Platinum, 2 and up for multi-Platinum, and at least High/Mid for
// Diamond.
type Certification struct {
	Tier       Tier
	Multiplier int
}

// Classify derives the certification for a unit total.
func Classify(units int64, kind Kind) Certification {
	s := kind.Scale()
	switch {
	case units < s.Entry:
		return Certification{Tier: None}
	case units < s.Mid:
		return Certification{Tier: Gold}
	case units < s.High:
		if units < 2*s.Mid {
			return Certification{Tier: Platinum}
		}
		return Certification{Tier: Platinum, Multiplier: int(units / s.Mid)}
	default:
		return Certification{Tier: Diamond, Multiplier: int(units / s.Mid)}
	}
}

// Compare orders certifications by tier, then multiplier.
func Compare(a, b Certification) int {
	if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
		return c
	}
	return cmp.Compare(a.Multiplier, b.Multiplier)
}

func (c Certification) Less(other Certification) bool {
	return Compare(c, other) < 0
}

// Units returns the fewest units that classify as c.
func Units(c Certification, kind Kind) int64 {
	s := kind.Scale()
	switch c.Tier {
	case Gold:
		return s.Entry
	case Platinum, Diamond:
		return int64(max(c.Multiplier, 1)) * s.Mid
	default:
		return 0
	}
}

// Next returns the certification directly above c.
func Next(c Certification, kind Kind) Certification {
	return Classify(nextThreshold(Units(c, kind), kind), kind)
}

// UnitsToNext is how many more units are needed to reach the next
// certification.
func UnitsToNext(units int64, kind Kind) int64 {
	return nextThreshold(max(units, 0), kind) - max(units, 0)
}

func nextThreshold(units int64, kind Kind) int64 {
	s := kind.Scale()
	switch {
	case units < s.Entry:
		return s.Entry
	case units < s.Mid:
		return s.Mid
	default:
		return (units/s.Mid + 1) * s.Mid
	}
}
