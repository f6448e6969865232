package store

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

// ListenedTrack is a track together with one user's lifetime plays of it.
type ListenedTrack struct {
	Track *chart.Track
	Plays int64
}

// trackID converts a Track row id into a chart id.
func trackID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetTracks returns every track user has listened to, ordered by id.
func (s *Store) GetTracks(user string) ([]ListenedTrack, error) {
	query := `
	SELECT Track.id, Track.artist, Track.album, Track.name, COUNT(Listen.id)
	FROM Listen
	INNER JOIN Track ON Track.id = Listen.track
	WHERE Listen.user = ?
	GROUP BY Track.id
	ORDER BY Track.id
	`
	rows, err := s.db.Query(query, user)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var results []ListenedTrack
	for rows.Next() {
		var id, plays int64
		var artist, album, name string
		if err := rows.Scan(&id, &artist, &album, &name, &plays); err != nil {
			return nil, err
		}
		t := chart.NewTrack(trackID(id), name, artist)
		t.Album = album
		results = append(results, ListenedTrack{Track: t, Plays: plays})
	}
	return results, rows.Err()
}

// GetTrack looks up one track by chart id. ok is false if there is no such
// track.
func (s *Store) GetTrack(id string) (t *chart.Track, ok bool, err error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, false, nil
	}

	var artist, album, name string
	err = s.db.QueryRow("SELECT artist, album, name FROM Track WHERE id = ?", n).Scan(&artist, &album, &name)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting track %s: %w", id, err)
	}
	t = chart.NewTrack(id, name, artist)
	t.Album = album
	return t, true, nil
}

// GetVariants returns the ids of other tracks with the same artist and name
// as id, typically the same song on another release. Lowest id first.
func (s *Store) GetVariants(id string) ([]string, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	query := `
	SELECT other.id
	FROM Track AS t
	INNER JOIN Track AS other
		ON other.artist = t.artist AND other.name = t.name AND other.id <> t.id
	WHERE t.id = ?
	ORDER BY other.id
	`
	rows, err := s.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("querying variants of %s: %w", id, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var other int64
		if err := rows.Scan(&other); err != nil {
			return nil, err
		}
		ids = append(ids, trackID(other))
	}
	return ids, rows.Err()
}

// GetWeekPlays counts the plays of each track by user in [start, end). When
// maxPerDay is positive, each track counts at most that many plays per UTC day.
func (s *Store) GetWeekPlays(user string, start, end time.Time, maxPerDay int) ([]chart.Play, error) {
	limit := int64(maxPerDay)
	if limit <= 0 {
		limit = math.MaxInt64
	}

	query := `
	SELECT track, SUM(MIN(n, ?)) FROM (
		SELECT track, CAST(date AS INTEGER) / 86400 AS day, COUNT(*) AS n
		FROM Listen
		WHERE user = ?
		AND CAST(date AS INTEGER) >= ?
		AND CAST(date AS INTEGER) < ?
		GROUP BY track, day
	)
	GROUP BY track
	ORDER BY track
	`
	rows, err := s.db.Query(query, limit, user, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying plays from %s: %w", start.Format(dateFormat), err)
	}
	defer rows.Close()

	var plays []chart.Play
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		plays = append(plays, chart.Play{ID: trackID(id), Plays: n})
	}
	return plays, rows.Err()
}
