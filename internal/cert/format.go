package cert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSymbol is returned by Parse for unreadable shorthand.
var ErrInvalidSymbol = errors.New("invalid certification symbol")

// diamondStep is how many Platinum multiples make one Diamond.
const diamondStep = 10

// String is the symbol form, so certifications print the way chart sheets
// show them.
func (c Certification) String() string {
	return c.Symbol()
}

// Symbol renders c as e.g. "●", "▲", "3x▲" or "11x⬥".
func (c Certification) Symbol() string {
	if c.Multiplier == 0 {
		return c.Tier.Symbol()
	}
	return fmt.Sprintf("%dx%s", c.Multiplier, c.Tier.Symbol())
}

// Full renders c as e.g. "Gold" or "3 times Platinum".
func (c Certification) Full() string {
	if c.Multiplier == 0 {
		return c.Tier.String()
	}
	return fmt.Sprintf("%d times %s", c.Multiplier, c.Tier)
}

// ExpandedFull splits a Diamond multiplier into Diamond and Platinum parts:
// 11 is "Diamond Platinum", 23 is "2 times Diamond and 3 times Platinum".
// Other tiers render as Full.
func (c Certification) ExpandedFull() string {
	diamond, platinum, ok := c.split()
	if !ok {
		return c.Full()
	}

	s := Diamond.String()
	if diamond > 1 {
		s = fmt.Sprintf("%d times %s", diamond, Diamond)
	}
	switch {
	case platinum > 1:
		s += fmt.Sprintf(" and %d times %s", platinum, Platinum)
	case platinum == 1:
		s += " " + Platinum.String()
	}
	return s
}

// ExpandedSymbol is the symbol form of ExpandedFull: "⬥ ▲", "2x⬥ 3x▲".
func (c Certification) ExpandedSymbol() string {
	diamond, platinum, ok := c.split()
	if !ok {
		return c.Symbol()
	}

	parts := []string{Certification{Tier: Diamond, Multiplier: diamond}.Symbol()}
	if diamond == 1 {
		parts[0] = Diamond.Symbol()
	}
	if platinum > 0 {
		p := Certification{Tier: Platinum, Multiplier: platinum}
		if platinum == 1 {
			p.Multiplier = 0
		}
		parts = append(parts, p.Symbol())
	}
	return strings.Join(parts, " ")
}

func (c Certification) split() (diamond, platinum int, ok bool) {
	if c.Tier != Diamond {
		return 0, 0, false
	}
	return c.Multiplier / diamondStep, c.Multiplier % diamondStep, true
}

var tierLetters = map[string]Tier{
	"N": None,
	"-": None,
	"G": Gold,
	"●": Gold,
	"P": Platinum,
	"▲": Platinum,
	"D": Diamond,
	"⬥": Diamond,
}

// Parse reads the symbol form back. Letters may stand in for the symbols:
// "G", "2xP", "11xD" and "11x⬥" are all accepted.
func Parse(s string) (Certification, error) {
	s = strings.TrimSpace(s)
	mult, letter, found := strings.Cut(s, "x")
	if !found {
		mult, letter = "0", s
	}

	tier, ok := tierLetters[strings.ToUpper(letter)]
	if !ok {
		return Certification{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	n, err := strconv.Atoi(mult)
	if err != nil || n < 0 {
		return Certification{}, fmt.Errorf("%w: bad multiplier in %q", ErrInvalidSymbol, s)
	}
	return Certification{Tier: tier, Multiplier: n}, nil
}
