package chart

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// windowSize is the number of consecutive weeks a score is computed over.
const windowSize = 3

// Play is one external id's play count within a snapshot.
type Play struct {
	ID    string
	Plays int64
}

// WeekSnapshot is the raw play data for one week. Snapshots handed to the
// builder must be contiguous: each Start equals the previous End.
type WeekSnapshot struct {
	Start time.Time
	End   time.Time
	Plays []Play
}

// Position is one canonical entity's result for a chart week.
type Position struct {
	ID    string
	Rank  int
	Score int64
	// Plays is this week's plays only.
	Plays int64
	// Charted is set when the position was recorded as an entry.
	Charted bool
}

// Week is the ranked result of one window. Positions holds every scored
// entity, including those past the cutoff, ordered by rank then id.
type Week struct {
	Start     time.Time
	End       time.Time
	Positions []Position
}

// Chart returns only the recorded positions.
func (w Week) Chart() []Position {
	var charted []Position
	for _, p := range w.Positions {
		if p.Charted {
			charted = append(charted, p)
		}
	}
	return charted
}

// Registration is the answer of a NewEntityFunc: either a new track to add,
// or the id of an existing entity the unknown id should be merged into.
type Registration struct {
	Track     *Track
	MergeInto string
}

// NewEntityFunc is called for a charting id the repository does not know.
type NewEntityFunc func(id string) (Registration, error)

// Builder turns weekly snapshots into ranked chart weeks and records the
// charting positions into the repository.
type Builder struct {
	cfg       Config
	resolver  *Resolver
	repo      Repository
	newEntity NewEntityFunc
	logger    *zap.Logger
}

type Option func(*Builder)

func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithNewEntityFunc sets the hook used for unknown charting ids. Without one,
// a bare track named after its id is created.
func WithNewEntityFunc(fn NewEntityFunc) Option {
	return func(b *Builder) {
		b.newEntity = fn
	}
}

func NewBuilder(cfg Config, resolver *Resolver, repo Repository, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil || repo == nil {
		return nil, fmt.Errorf("builder needs a resolver and a repository")
	}

	b := &Builder{
		cfg:      cfg,
		resolver: resolver,
		repo:     repo,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build charts every window in weeks and returns the results in order.
func (b *Builder) Build(weeks []WeekSnapshot) ([]Week, error) {
	var charts []Week
	err := b.Each(weeks, func(w Week) error {
		charts = append(charts, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return charts, nil
}

// Each charts every window in weeks, calling fn after each week has been
// recorded. The whole stream is checked before anything is recorded.
func (b *Builder) Each(weeks []WeekSnapshot, fn func(Week) error) error {
	if err := checkContiguous(weeks); err != nil {
		return err
	}

	for i := windowSize - 1; i < len(weeks); i++ {
		week, err := b.chartWeek(weeks[i-2], weeks[i-1], weeks[i])
		if err != nil {
			return fmt.Errorf("charting week ending %s: %w", weeks[i].End.Format(dateFormat), err)
		}
		if fn != nil {
			if err := fn(week); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkContiguous(weeks []WeekSnapshot) error {
	if len(weeks) < windowSize {
		return &InsufficientHistoryError{Have: len(weeks), Need: windowSize}
	}
	for i, w := range weeks {
		if !w.End.After(w.Start) {
			return &NonContiguousWindowError{Index: i, Start: w.Start, End: w.End}
		}
		if i > 0 && !w.Start.Equal(weeks[i-1].End) {
			return &NonContiguousWindowError{Index: i, PrevEnd: weeks[i-1].End, Start: w.Start, End: w.End}
		}
	}
	return nil
}

func (b *Builder) chartWeek(secondLast, last, current WeekSnapshot) (Week, error) {
	for {
		positions := b.score(secondLast, last, current)
		merged, err := b.registerUnknown(positions)
		if err != nil {
			return Week{}, err
		}
		if merged {
			// An id now resolves elsewhere, so its plays must be rescored.
			continue
		}

		charted, err := b.record(positions, current)
		if err != nil {
			return Week{}, err
		}
		b.logger.Debug("charted week",
			zap.String("start", current.Start.Format(dateFormat)),
			zap.String("end", current.End.Format(dateFormat)),
			zap.Int("scored", len(positions)),
			zap.Int("charted", charted),
		)
		return Week{Start: current.Start, End: current.End, Positions: positions}, nil
	}
}

// score resolves every id in the window, sums plays per canonical id per
// week and ranks the weighted totals.
func (b *Builder) score(secondLast, last, current WeekSnapshot) []Position {
	totals := make(map[string]*[windowSize]int64)
	for i, week := range [windowSize]WeekSnapshot{secondLast, last, current} {
		for _, p := range week.Plays {
			id := b.resolver.ResolveOrSelf(p.ID)
			t, ok := totals[id]
			if !ok {
				t = new([windowSize]int64)
				totals[id] = t
			}
			t[i] += p.Plays
		}
	}

	positions := make([]Position, 0, len(totals))
	for id, t := range totals {
		positions = append(positions, Position{
			ID:    id,
			Score: b.cfg.Score(t[0], t[1], t[2]),
			Plays: t[2],
		})
	}
	Rank(positions)

	for i := range positions {
		p := &positions[i]
		p.Charted = p.Rank <= b.cfg.ChartLength && p.Plays >= b.cfg.EntryPolicy.MinPlays
	}
	return positions
}

// Rank orders positions by score, highest first, and assigns competition
// ranks: one more than the number of strictly higher scores. Ties share a
// rank and are listed by id.
func Rank(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Score != positions[j].Score {
			return positions[i].Score > positions[j].Score
		}
		return positions[i].ID < positions[j].ID
	})
	for i := range positions {
		if i > 0 && positions[i].Score == positions[i-1].Score {
			positions[i].Rank = positions[i-1].Rank
		} else {
			positions[i].Rank = i + 1
		}
	}
}

// registerUnknown creates or merges every charting id the repository does
// not have yet. It stops at the first merge, since the week must be rescored.
func (b *Builder) registerUnknown(positions []Position) (merged bool, err error) {
	for _, p := range positions {
		if !p.Charted {
			continue
		}
		if _, ok := b.repo.Get(p.ID); ok {
			continue
		}

		reg := Registration{Track: NewTrack(p.ID, "")}
		if b.newEntity != nil {
			reg, err = b.newEntity(p.ID)
			if err != nil {
				return false, fmt.Errorf("registering %q: %w", p.ID, err)
			}
		}

		if reg.MergeInto != "" {
			target := b.resolver.ResolveOrSelf(reg.MergeInto)
			if _, ok := b.repo.Get(target); !ok {
				return false, fmt.Errorf("merging %q: %q is not a known track", p.ID, reg.MergeInto)
			}
			if err := b.resolver.RegisterAlias(p.ID, target); err != nil {
				return false, fmt.Errorf("merging %q: %w", p.ID, err)
			}
			b.logger.Info("merged new id into existing track",
				zap.String("id", p.ID), zap.String("into", target))
			return true, nil
		}

		if reg.Track == nil {
			return false, fmt.Errorf("registering %q: hook returned neither a track nor a merge", p.ID)
		}
		if reg.Track.ID == "" {
			reg.Track.ID = p.ID
		}
		if reg.Track.ID != p.ID {
			return false, fmt.Errorf("registering %q: hook returned track %q", p.ID, reg.Track.ID)
		}
		if err := b.repo.Add(reg.Track); err != nil {
			return false, err
		}
		b.resolver.Register(p.ID)
	}
	return false, nil
}

func (b *Builder) record(positions []Position, week WeekSnapshot) (int, error) {
	charted := 0
	for _, p := range positions {
		if !p.Charted {
			continue
		}
		entry, err := NewEntry(week.Start, week.End, p.Plays, p.Rank, p.Score, b.cfg.EntryPolicy)
		if err != nil {
			return charted, fmt.Errorf("recording %q: %w", p.ID, err)
		}
		track, ok := b.repo.Get(p.ID)
		if !ok {
			return charted, fmt.Errorf("recording %q: track vanished from repository", p.ID)
		}
		track.AddEntry(entry)
		charted++
	}
	return charted, nil
}
