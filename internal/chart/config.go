package chart

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the scoring weights and chart size.
type Config struct {
	// Weights applied to this week, last week and the week before.
	CurrentWeight    int64 `validate:"gte=0"`
	LastWeight       int64 `validate:"gte=0"`
	SecondLastWeight int64 `validate:"gte=0"`

	// ChartLength is the cutoff rank; ties at the cutoff all chart.
	ChartLength int `validate:"min=10,max=60"`

	EntryPolicy EntryPolicy
}

func DefaultConfig() Config {
	return Config{
		CurrentWeight:    10,
		LastWeight:       2,
		SecondLastWeight: 2,
		ChartLength:      60,
		EntryPolicy:      DefaultEntryPolicy,
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid chart config: %w", err)
	}
	return nil
}

// Score combines a three-week play history into one chart score.
func (c Config) Score(secondLast, last, current int64) int64 {
	return secondLast*c.SecondLastWeight + last*c.LastWeight + current*c.CurrentWeight
}
