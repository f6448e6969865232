package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ademuri/last-fm-charts/internal/cert"
	"github.com/ademuri/last-fm-charts/internal/chart"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var jan1 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func scrobble(album string, day, second int) store.TrackImport {
	return store.TrackImport{
		Artist:    "Artist",
		Album:     album,
		TrackName: "Song",
		DateUTS:   strconv.FormatInt(jan1.AddDate(0, 0, day).Unix()+int64(second), 10),
	}
}

// seedChartDb stores four weeks of listens: the single release of "Song"
// twice a week for three weeks, then the deluxe release three times.
func seedChartDb(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "lastfm.db")
	db, err := store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.CreateUser("testuser"))
	require.NoError(t, db.AddRecentTracks("testuser", []store.TrackImport{
		scrobble("Single", 0, 0), scrobble("Single", 0, 10),
		scrobble("Single", 7, 0), scrobble("Single", 7, 10),
		scrobble("Single", 14, 0), scrobble("Single", 14, 10),
		scrobble("Deluxe", 21, 0), scrobble("Deluxe", 21, 10), scrobble("Deluxe", 22, 0),
	}))
	return dbPath
}

func computeTestChart(t *testing.T, dbPath string, mergeVariants bool) {
	t.Helper()
	err := recomputeChart(ChartConfig{
		DbPath:        dbPath,
		User:          "testuser",
		Chart:         chart.DefaultConfig(),
		MergeVariants: mergeVariants,
		Workers:       2,
		Start:         jan1,
		End:           jan1.AddDate(0, 0, 28),
	}, zap.NewNop())
	require.NoError(t, err)
}

func TestRecomputeChartMergesVariants(t *testing.T) {
	dbPath := seedChartDb(t)
	computeTestChart(t, dbPath, true)

	db, err := store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	repo, res, cfg, err := loadChart(db, "testuser")
	require.NoError(t, err)
	assert.Equal(t, chart.DefaultConfig(), cfg)
	assert.Equal(t, "1", res.ResolveOrSelf("2"))

	single, ok := repo.Get("1")
	require.True(t, ok)
	assert.Equal(t, int64(9), single.Plays)
	entries := single.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(28), entries[0].Score)
	assert.Equal(t, 1, entries[1].Rank)
	assert.Equal(t, int64(38), entries[1].Score)
	assert.Equal(t, int64(3), entries[1].Plays)

	week, ok := latestWeek(repo)
	require.True(t, ok)
	assert.Equal(t, jan1.AddDate(0, 0, 28), week.End)
	rows := sheetRows(week, repo)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"=", "Song", "Artist", "1", "1", "2", "38", "3", "1²"}, rows[0])

	// The single holds the album chart with 60 points plus two per play.
	album, ok := repo.Collection("Artist - Single")
	require.True(t, ok)
	albumEntries := album.Entries()
	require.Len(t, albumEntries, 2)
	assert.Equal(t, int64(64), albumEntries[0].Score)
	assert.Equal(t, int64(2), albumEntries[0].Plays)
	albumRows := albumSheetRows(albumWeek(repo, week), repo)
	require.Len(t, albumRows, 1)
	assert.Equal(t, []string{"=", "Single", "Artist", "1", "1", "2", "1²", "66", "3"}, albumRows[0])
	_, ok = repo.Collection("Artist - Deluxe")
	assert.False(t, ok, "the merged deluxe release should not form an album")

	// Recomputing from scratch gives the same history.
	computeTestChart(t, dbPath, true)
	again, _, _, err := loadChart(db, "testuser")
	require.NoError(t, err)
	track, _ := again.Get("1")
	assert.Equal(t, entries, track.Entries())
	album, _ = again.Collection("Artist - Single")
	assert.Equal(t, albumEntries, album.Entries())
}

func TestRecomputeChartWithoutMerging(t *testing.T) {
	dbPath := seedChartDb(t)
	computeTestChart(t, dbPath, false)

	db, err := store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	repo, res, _, err := loadChart(db, "testuser")
	require.NoError(t, err)
	assert.False(t, res.IsAlias("2"))

	deluxe, ok := repo.Get("2")
	require.True(t, ok)
	require.Len(t, deluxe.Entries(), 1)
	assert.Equal(t, 1, deluxe.Entries()[0].Rank)

	week, ok := latestWeek(repo)
	require.True(t, ok)
	rows := sheetRows(week, repo)
	require.Len(t, rows, 1)
	assert.Equal(t, "NEW", rows[0][0])
	assert.Equal(t, "-", rows[0][4])

	albumRows := albumSheetRows(albumWeek(repo, week), repo)
	require.Len(t, albumRows, 1)
	assert.Equal(t, []string{"NEW", "Deluxe", "Artist", "1", "-", "1", "1", "66", "3"}, albumRows[0])
	single, ok := repo.Collection("Artist - Single")
	require.True(t, ok)
	assert.Len(t, single.Entries(), 1, "the single drops off the album chart once it has no plays")
}

func TestRecomputeChartInsufficientHistory(t *testing.T) {
	dbPath := seedChartDb(t)
	err := recomputeChart(ChartConfig{
		DbPath: dbPath,
		User:   "testuser",
		Chart:  chart.DefaultConfig(),
		Start:  jan1,
		End:    jan1.AddDate(0, 0, 14),
	}, zap.NewNop())
	assert.NoError(t, err)

	db, err := store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, ok, err := db.GetLatestRun("testuser")
	require.NoError(t, err)
	assert.False(t, ok, "nothing should be saved without a full window")
}

func TestRecomputeChartRejectsInvalidConfig(t *testing.T) {
	cfg := chart.DefaultConfig()
	cfg.ChartLength = 5
	err := recomputeChart(ChartConfig{DbPath: filepath.Join(t.TempDir(), "lastfm.db"), Chart: cfg}, zap.NewNop())
	assert.ErrorContains(t, err, "invalid chart config")
}

func TestStatsReport(t *testing.T) {
	dbPath := seedChartDb(t)
	computeTestChart(t, dbPath, true)

	var out bytes.Buffer
	require.NoError(t, printStats(&out, dbPath, "testuser", "2", false, "yaml"))
	assert.Contains(t, out.String(), "weeks_charted: 2")
	assert.Contains(t, out.String(), "longest_streak: 2")
	assert.Contains(t, out.String(), "units: 138")
	assert.Contains(t, out.String(), "certification: Gold")
	assert.Contains(t, out.String(), "units_to_next: 62")

	out.Reset()
	require.NoError(t, printStats(&out, dbPath, "testuser", "Artist - Single", true, "table"))
	assert.Contains(t, out.String(), "Single by Artist")
	assert.Contains(t, out.String(), "2024-01-29")

	out.Reset()
	require.NoError(t, printStats(&out, dbPath, "testuser", "Artist - Single", true, "yaml"))
	assert.Contains(t, out.String(), "weeks_charted: 2")
	assert.Contains(t, out.String(), "weeks_number_one: 2")
	assert.Contains(t, out.String(), "score: 66")

	assert.Error(t, printStats(&out, dbPath, "testuser", "99", false, "table"))
	assert.Error(t, printStats(&out, dbPath, "testuser", "1", false, "json"))
}

type fakeVariants map[string][]string

func (f fakeVariants) GetVariants(id string) ([]string, error) {
	if id == "broken" {
		return nil, errors.New("database is locked")
	}
	return f[id], nil
}

func TestVariantMerger(t *testing.T) {
	all := chart.NewMemoryRepository()
	charted := chart.NewMemoryRepository()
	single := chart.NewTrack("1", "Song", "Artist")
	deluxe := chart.NewTrack("2", "Song", "Artist")
	require.NoError(t, all.Add(single))
	require.NoError(t, all.Add(deluxe))
	require.NoError(t, charted.Add(single))

	hook := variantMerger(fakeVariants{"2": {"1"}, "1": {"2"}}, all, charted)

	reg, err := hook("2")
	require.NoError(t, err)
	assert.Equal(t, chart.Registration{MergeInto: "1"}, reg)

	reg, err = hook("3")
	require.NoError(t, err)
	require.NotNil(t, reg.Track)
	assert.Equal(t, "3", reg.Track.ID)

	_, err = hook("broken")
	assert.Error(t, err)

	noMerge := variantMerger(nil, all, charted)
	reg, err = noMerge("2")
	require.NoError(t, err)
	assert.Same(t, deluxe, reg.Track)
}

func TestWriteChartCsv(t *testing.T) {
	track := chart.NewTrack("7", "Song, Part 2", "A", "B")
	track.Album = "Album"
	track.AddEntry(chart.Entry{Start: jan1, End: jan1.AddDate(0, 0, 7), Plays: 3, Rank: 2, Score: 30})

	var out bytes.Buffer
	require.NoError(t, writeChartCsv(&out, []*chart.Track{track, chart.NewTrack("8", "Never Charted")}))
	assert.Equal(t,
		"track_id,name,artists,album,start,end,rank,plays,score\n"+
			"7,\"Song, Part 2\",A & B,Album,2024-01-01,2024-01-08,2,3,30\n",
		out.String())
}

func TestCertRows(t *testing.T) {
	gold := chart.NewTrack("1", "Gold Song", "Artist")
	gold.Plays = 50
	platinum := chart.NewTrack("2", "Platinum Song", "Artist")
	platinum.Plays = 150
	none := chart.NewTrack("3", "Quiet Song", "Artist")
	none.Plays = 10
	tracks := []*chart.Track{gold, platinum, none}

	rows := trackCertRows(tracks, 60, cert.Certification{Tier: cert.Gold})
	require.Len(t, rows, 2)
	assert.Equal(t, "Platinum Song", rows[0].Title)
	assert.Equal(t, []string{"Platinum Song", "Artist", "300", "▲", "2x▲", "100"}, rows[0].strings())
	assert.Equal(t, []string{"Gold Song", "Artist", "100", "●", "▲", "100"}, rows[1].strings())

	minimum, err := cert.Parse("P")
	require.NoError(t, err)
	assert.Len(t, trackCertRows(tracks, 60, minimum), 1)

	deepCut := chart.NewTrack("4", "Deep Cut", "Artist")
	deepCut.Plays = 40
	album := chart.NewCollection("Artist - Album", "Album", "Artist")
	for _, member := range append(tracks, deepCut) {
		album.AddMember(member)
	}
	rows = collectionCertRows([]*chart.Collection{album}, 60, cert.Certification{Tier: cert.Gold})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(500), rows[0].Units)
	assert.Equal(t, []string{"Album", "Artist", "500", "●", "▲", "500"}, rows[0].strings())
}

func TestChartEmailContent(t *testing.T) {
	repo := chart.NewMemoryRepository()
	track := chart.NewTrack("1", "Rock & Roll", "Artist")
	entry := chart.Entry{Start: jan1, End: jan1.AddDate(0, 0, 7), Plays: 4, Rank: 1, Score: 40}
	track.AddEntry(entry)
	require.NoError(t, repo.Add(track))

	week, ok := latestWeek(repo)
	require.True(t, ok)
	subject, body := chartEmailContent("testuser", week, repo)
	assert.Equal(t, "Chart for testuser, week of 2024-01-01 to 2024-01-08", subject)
	assert.Contains(t, body, "<td>Rock &amp; Roll</td>")
	assert.Contains(t, body, "<td>NEW</td>")
	assert.NotContains(t, body, "Albums")

	album := chart.NewCollection("Artist - Hits", "Hits", "Artist")
	album.AddMember(track)
	album.AddEntry(chart.Entry{Start: jan1, End: jan1.AddDate(0, 0, 7), Plays: 4, Rank: 1, Score: 68})
	require.NoError(t, repo.AddCollection(album))
	_, body = chartEmailContent("testuser", week, repo)
	assert.Contains(t, body, "<h2>Albums</h2>")
	assert.Contains(t, body, "<td>Hits</td>")
	assert.Contains(t, body, "<td>68</td>")

	_, ok = latestWeek(chart.NewMemoryRepository())
	assert.False(t, ok)
}

func TestCertRowsCountAbsorbedTracksOnce(t *testing.T) {
	repo := chart.NewMemoryRepository()
	require.NoError(t, repo.Add(chart.NewTrack("1", "Song", "Artist")))
	require.NoError(t, repo.Add(chart.NewTrack("2", "Song", "Artist")))
	res := chart.NewResolver(repo)
	res.Register("1")
	res.Register("2")
	require.NoError(t, res.RegisterAlias("2", "1"))
	repo.UpdatePlays(map[string]int64{"1": 60, "2": 60}, res)

	tracks := canonicalTracks(repo, res)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1", tracks[0].ID)

	rows := trackCertRows(tracks, 60, cert.Certification{Tier: cert.Gold})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Song", "Artist", "240", "▲", "2x▲", "160"}, rows[0].strings())
}
