// Package snapshot turns stored listens into weekly chart snapshots.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

const (
	dateFormat     = "2006-01-02"
	defaultWorkers = 4
)

// Source reports per-track plays for one period.
type Source interface {
	GetWeekPlays(user string, start, end time.Time, maxPerDay int) ([]chart.Play, error)
}

// Period is a half-open [Start, End) week.
type Period struct {
	Start time.Time
	End   time.Time
}

// Weeks splits [from, to) into consecutive seven day periods starting at
// from's day. A trailing partial week is left out.
func Weeks(from, to time.Time) []Period {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	var periods []Period
	for end := start.AddDate(0, 0, 7); !end.After(to); end = end.AddDate(0, 0, 7) {
		periods = append(periods, Period{Start: start, End: end})
		start = end
	}
	return periods
}

type Loader struct {
	source    Source
	user      string
	maxPerDay int
	workers   int
	logger    *zap.Logger
}

type Option func(*Loader)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithMaxPerDay caps how many plays of one track count per day. 0 disables
// the cap.
func WithMaxPerDay(n int) Option {
	return func(l *Loader) {
		l.maxPerDay = n
	}
}

// WithWorkers sets how many weeks are queried at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func NewLoader(source Source, user string, opts ...Option) *Loader {
	l := &Loader{
		source:  source,
		user:    user,
		workers: defaultWorkers,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns one snapshot per full week in [from, to), in order.
func (l *Loader) Load(ctx context.Context, from, to time.Time) ([]chart.WeekSnapshot, error) {
	periods := Weeks(from, to)
	snapshots := make([]chart.WeekSnapshot, len(periods))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, p := range periods {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plays, err := l.source.GetWeekPlays(l.user, p.Start, p.End, l.maxPerDay)
			if err != nil {
				return fmt.Errorf("loading week of %s: %w", p.Start.Format(dateFormat), err)
			}
			snapshots[i] = chart.WeekSnapshot{Start: p.Start, End: p.End, Plays: plays}
			l.logger.Debug("loaded week",
				zap.String("start", p.Start.Format(dateFormat)),
				zap.Int("tracks", len(plays)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("loaded snapshots",
		zap.String("user", l.user),
		zap.Int("weeks", len(snapshots)),
	)
	return snapshots, nil
}
