package store

import (
	"strconv"
	"testing"
	"time"

	"github.com/ademuri/last-fm-charts/internal/chart"
)

// 2024-01-01T00:00:00Z
const firstDay int64 = 1704067200

func listen(artist, album, track string, day int, second int64) TrackImport {
	return TrackImport{
		Artist:    artist,
		Album:     album,
		TrackName: track,
		DateUTS:   strconv.FormatInt(firstDay+int64(day)*86400+second, 10),
	}
}

func seedListens(t *testing.T, s *Store, user string, tracks ...TrackImport) {
	t.Helper()
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.AddRecentTracks(user, tracks); err != nil {
		t.Fatalf("AddRecentTracks: %v", err)
	}
}

func TestGetWeekPlays(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	user := "testuser"
	seedListens(t, s, user,
		listen("Artist", "Album", "Song A", 0, 0),
		listen("Artist", "Album", "Song A", 0, 60),
		listen("Artist", "Album", "Song A", 0, 120),
		listen("Artist", "Album", "Song A", 1, 0),
		listen("Artist", "Album", "Song B", 2, 0),
		listen("Artist", "Album", "Song B", 7, 0),
	)

	start := time.Unix(firstDay, 0).UTC()
	end := start.AddDate(0, 0, 7)

	plays, err := s.GetWeekPlays(user, start, end, 0)
	if err != nil {
		t.Fatalf("GetWeekPlays: %v", err)
	}
	want := []chart.Play{{ID: "1", Plays: 4}, {ID: "2", Plays: 1}}
	if len(plays) != len(want) || plays[0] != want[0] || plays[1] != want[1] {
		t.Errorf("GetWeekPlays() = %v, want %v", plays, want)
	}

	capped, err := s.GetWeekPlays(user, start, end, 2)
	if err != nil {
		t.Fatalf("GetWeekPlays capped: %v", err)
	}
	if len(capped) != 2 || capped[0].Plays != 3 {
		t.Errorf("GetWeekPlays(max 2) = %v, want 3 plays for track 1", capped)
	}

	other, err := s.GetWeekPlays("nobody", start, end, 0)
	if err != nil {
		t.Fatalf("GetWeekPlays other user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no plays for another user, got %v", other)
	}
}

func TestGetFirstListen(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	user := "testuser"
	seedListens(t, s, user,
		listen("Artist", "Album", "Song A", 3, 0),
		listen("Artist", "Album", "Song A", 1, 30),
	)

	first, err := s.GetFirstListen(user)
	if err != nil {
		t.Fatalf("GetFirstListen: %v", err)
	}
	if want := time.Unix(firstDay+86400+30, 0).UTC(); !first.Equal(want) {
		t.Errorf("GetFirstListen() = %v, want %v", first, want)
	}
}

func TestGetVariants(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	user := "testuser"
	seedListens(t, s, user,
		listen("Artist", "Single", "Song", 0, 0),
		listen("Artist", "Single", "Other Song", 0, 10),
		listen("Artist", "Deluxe", "Song", 0, 20),
		listen("Someone Else", "Covers", "Song", 0, 30),
	)

	variants, err := s.GetVariants("3")
	if err != nil {
		t.Fatalf("GetVariants: %v", err)
	}
	if len(variants) != 1 || variants[0] != "1" {
		t.Errorf("GetVariants(3) = %v, want [1]", variants)
	}

	track, ok, err := s.GetTrack("3")
	if err != nil || !ok {
		t.Fatalf("GetTrack(3) = %v, %v", ok, err)
	}
	if track.String() != "Song by Artist" || track.Album != "Deluxe" {
		t.Errorf("GetTrack(3) = %q on %q", track, track.Album)
	}

	if _, ok, err := s.GetTrack("not-a-number"); ok || err != nil {
		t.Errorf("GetTrack(not-a-number) = %v, %v", ok, err)
	}
}

func TestSaveAndLoadChart(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	user := "testuser"
	seedListens(t, s, user,
		listen("Artist", "Album", "Song A", 0, 0),
		listen("Artist", "Album", "Song A", 0, 10),
		listen("Artist", "Album", "Song B", 0, 20),
		listen("Artist", "Album (Live)", "Song A", 0, 30),
	)

	if err := s.SaveAliases(user, map[string]string{"3": "1"}); err != nil {
		t.Fatalf("SaveAliases: %v", err)
	}

	repo, res, err := s.LoadChart(user)
	if err != nil {
		t.Fatalf("LoadChart: %v", err)
	}
	if got := res.ResolveOrSelf("3"); got != "1" {
		t.Errorf("alias 3 resolves to %q, want 1", got)
	}
	a, ok := repo.Get("1")
	if !ok {
		t.Fatalf("track 1 missing")
	}
	if a.Plays != 3 {
		t.Errorf("track 1 plays = %d, want 3 including its alias", a.Plays)
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	entry := chart.Entry{Start: start, End: start.AddDate(0, 0, 7), Plays: 2, Rank: 1, Score: 20}
	a.AddEntry(entry)
	album, ok := repo.Collection("Artist - Album")
	if !ok {
		t.Fatalf("collection missing")
	}
	albumEntry := chart.Entry{Start: start, End: start.AddDate(0, 0, 7), Plays: 3, Rank: 1, Score: 66}
	album.AddEntry(albumEntry)

	cfg := chart.DefaultConfig()
	run := NewRun(cfg, 25, time.Now())
	if err := s.SaveChart(user, run, repo.Tracks(), repo.Collections()); err != nil {
		t.Fatalf("SaveChart: %v", err)
	}

	repo, _, err = s.LoadChart(user)
	if err != nil {
		t.Fatalf("LoadChart after save: %v", err)
	}
	a, _ = repo.Get("1")
	entries := a.Entries()
	if len(entries) != 1 || !sameEntry(entries[0], entry) {
		t.Errorf("loaded entries = %v, want [%v]", entries, entry)
	}

	album, ok = repo.Collection("Artist - Album")
	if !ok {
		t.Fatalf("collection missing after save")
	}
	if n := len(album.Members()); n != 2 {
		t.Errorf("album has %d members, want 2", n)
	}
	albumEntries := album.Entries()
	if len(albumEntries) != 1 || !sameEntry(albumEntries[0], albumEntry) {
		t.Errorf("loaded album entries = %v, want [%v]", albumEntries, albumEntry)
	}
	if _, ok := repo.Collection("Artist - Album (Live)"); ok {
		t.Errorf("aliased tracks should not form collections")
	}

	latest, ok, err := s.GetLatestRun(user)
	if err != nil || !ok {
		t.Fatalf("GetLatestRun = %v, %v", ok, err)
	}
	if latest.ID != run.ID || latest.Config != cfg || latest.MaxAdjusted != 25 {
		t.Errorf("GetLatestRun() = %+v, want %+v", latest, run)
	}

	// Saving again replaces the history.
	repo.ClearEntries()
	for _, c := range repo.Collections() {
		c.ClearEntries()
	}
	if err := s.SaveChart(user, NewRun(cfg, 25, time.Now()), repo.Tracks(), repo.Collections()); err != nil {
		t.Fatalf("SaveChart again: %v", err)
	}
	repo, _, err = s.LoadChart(user)
	if err != nil {
		t.Fatalf("LoadChart after clear: %v", err)
	}
	a, _ = repo.Get("1")
	if a.HasHistory() {
		t.Errorf("expected no entries after saving a cleared chart, got %v", a.Entries())
	}
	album, _ = repo.Collection("Artist - Album")
	if entries := album.Entries(); len(entries) != 0 {
		t.Errorf("expected no album entries after saving a cleared chart, got %v", entries)
	}
}

func TestGetLatestRunEmpty(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	if _, ok, err := s.GetLatestRun("nobody"); ok || err != nil {
		t.Errorf("GetLatestRun = %v, %v; want no run", ok, err)
	}
}

func sameEntry(a, b chart.Entry) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End) &&
		a.Plays == b.Plays && a.Rank == b.Rank && a.Score == b.Score
}
