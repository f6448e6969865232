package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

const dateFormat = "2006-01-02"

// Run records the settings one chart recomputation was made with.
type Run struct {
	ID          string
	Created     time.Time
	Config      chart.Config
	MaxAdjusted int
}

// NewRun returns a run with a fresh id.
func NewRun(cfg chart.Config, maxAdjusted int, created time.Time) Run {
	return Run{
		ID:          uuid.NewString(),
		Created:     created,
		Config:      cfg,
		MaxAdjusted: maxAdjusted,
	}
}

// SaveAlias stores one alias pair. Re-saving an alias overwrites its target;
// conflict checking belongs to chart.Resolver.
func (s *Store) SaveAlias(user, alias, canonical string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO ChartAlias (user, alias, canonical) VALUES (?, ?, ?)",
		user, alias, canonical)
	if err != nil {
		return fmt.Errorf("saving alias %q -> %q: %w", alias, canonical, err)
	}
	return nil
}

// SaveAliases replaces every alias of user with pairs.
func (s *Store) SaveAliases(user string, pairs map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ChartAlias WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing aliases: %w", err)
	}
	for alias, canonical := range pairs {
		_, err := tx.Exec("INSERT INTO ChartAlias (user, alias, canonical) VALUES (?, ?, ?)", user, alias, canonical)
		if err != nil {
			return fmt.Errorf("saving alias %q -> %q: %w", alias, canonical, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetAliases returns every alias of user with its canonical id.
func (s *Store) GetAliases(user string) (map[string]string, error) {
	rows, err := s.db.Query("SELECT alias, canonical FROM ChartAlias WHERE user = ?", user)
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return nil, err
		}
		pairs[alias] = canonical
	}
	return pairs, rows.Err()
}

// SaveChart replaces the stored chart history of user with the entries of
// tracks and collections, all attributed to run.
func (s *Store) SaveChart(user string, run Run, tracks []*chart.Track, collections []*chart.Collection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ChartEntry WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing chart entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM ChartCollectionEntry WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing collection entries: %w", err)
	}

	cfg := run.Config
	_, err = tx.Exec(`
		INSERT INTO ChartRun (id, user, created, current_weight, last_weight, second_last_weight, chart_length, min_plays, max_adjusted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, user, run.Created, cfg.CurrentWeight, cfg.LastWeight, cfg.SecondLastWeight,
		cfg.ChartLength, cfg.EntryPolicy.MinPlays, run.MaxAdjusted)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ChartEntry (user, track, start, end, plays, rank, score, run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		for _, e := range t.Entries() {
			_, err := stmt.Exec(user, t.ID, e.Start.Format(dateFormat), e.End.Format(dateFormat),
				e.Plays, e.Rank, e.Score, run.ID)
			if err != nil {
				return fmt.Errorf("inserting entry for %q: %w", t.ID, err)
			}
		}
	}

	collectionStmt, err := tx.Prepare(`
		INSERT INTO ChartCollectionEntry (user, collection, start, end, plays, rank, score, run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing collection entry insert: %w", err)
	}
	defer collectionStmt.Close()

	for _, c := range collections {
		for _, e := range c.Entries() {
			_, err := collectionStmt.Exec(user, c.ID, e.Start.Format(dateFormat), e.End.Format(dateFormat),
				e.Plays, e.Rank, e.Score, run.ID)
			if err != nil {
				return fmt.Errorf("inserting entry for collection %q: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetLatestRun returns the most recent run of user. ok is false when the chart
// has never been computed.
func (s *Store) GetLatestRun(user string) (run Run, ok bool, err error) {
	row := s.db.QueryRow(`
		SELECT id, created, current_weight, last_weight, second_last_weight, chart_length, min_plays, max_adjusted
		FROM ChartRun WHERE user = ? ORDER BY created DESC LIMIT 1`, user)
	err = row.Scan(&run.ID, &run.Created, &run.Config.CurrentWeight, &run.Config.LastWeight,
		&run.Config.SecondLastWeight, &run.Config.ChartLength, &run.Config.EntryPolicy.MinPlays, &run.MaxAdjusted)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("getting latest run: %w", err)
	}
	return run, true, nil
}

// LoadChart builds the in-memory chart state of user: every track the user
// has listened to with its lifetime plays and stored entries, one collection
// per album, and the alias table.
func (s *Store) LoadChart(user string) (*chart.MemoryRepository, *chart.Resolver, error) {
	repo := chart.NewMemoryRepository()
	res := chart.NewResolver(repo)

	tracks, err := s.GetTracks(user)
	if err != nil {
		return nil, nil, err
	}
	counts := make(map[string]int64, len(tracks))
	for _, t := range tracks {
		counts[t.Track.ID] = t.Plays
		if err := repo.Add(t.Track); err != nil {
			return nil, nil, err
		}
		res.Register(t.Track.ID)
	}

	aliases, err := s.GetAliases(user)
	if err != nil {
		return nil, nil, err
	}
	for alias, canonical := range aliases {
		if err := res.RegisterAlias(alias, canonical); err != nil {
			return nil, nil, fmt.Errorf("loading aliases: %w", err)
		}
	}
	repo.UpdatePlays(counts, res)

	if err := s.loadEntries(user, repo); err != nil {
		return nil, nil, err
	}

	for _, t := range tracks {
		if res.IsAlias(t.Track.ID) || t.Track.Album == "" {
			continue
		}
		id := collectionID(t.Track.Credit(), t.Track.Album)
		c, ok := repo.Collection(id)
		if !ok {
			c = chart.NewCollection(id, t.Track.Album, t.Track.Artists...)
			if err := repo.AddCollection(c); err != nil {
				return nil, nil, err
			}
		}
		c.AddMember(t.Track)
	}

	if err := s.loadCollectionEntries(user, repo); err != nil {
		return nil, nil, err
	}
	return repo, res, nil
}

func collectionID(artist, album string) string {
	return artist + " - " + album
}

func (s *Store) loadEntries(user string, repo *chart.MemoryRepository) error {
	rows, err := s.db.Query(`
		SELECT track, start, end, plays, rank, score
		FROM ChartEntry WHERE user = ? ORDER BY end`, user)
	if err != nil {
		return fmt.Errorf("querying chart entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		id, e, err := scanEntry(rows)
		if err != nil {
			return err
		}

		t, ok := repo.Get(id)
		if !ok {
			t = chart.NewTrack(id, "")
			if err := repo.Add(t); err != nil {
				return err
			}
		}
		t.AddEntry(e)
	}
	return rows.Err()
}

// loadCollectionEntries attaches stored album chart weeks. Weeks of albums
// that no longer group any track are dropped.
func (s *Store) loadCollectionEntries(user string, repo *chart.MemoryRepository) error {
	rows, err := s.db.Query(`
		SELECT collection, start, end, plays, rank, score
		FROM ChartCollectionEntry WHERE user = ? ORDER BY end`, user)
	if err != nil {
		return fmt.Errorf("querying collection entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		id, e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if c, ok := repo.Collection(id); ok {
			c.AddEntry(e)
		}
	}
	return rows.Err()
}

func scanEntry(rows *sql.Rows) (string, chart.Entry, error) {
	var id, start, end string
	var e chart.Entry
	if err := rows.Scan(&id, &start, &end, &e.Plays, &e.Rank, &e.Score); err != nil {
		return "", chart.Entry{}, err
	}
	var err error
	if e.Start, err = time.Parse(dateFormat, start); err != nil {
		return "", chart.Entry{}, fmt.Errorf("parsing entry start %q: %w", start, err)
	}
	if e.End, err = time.Parse(dateFormat, end); err != nil {
		return "", chart.Entry{}, fmt.Errorf("parsing entry end %q: %w", end, err)
	}
	return id, e, nil
}
