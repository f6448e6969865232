/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/last-fm-charts/internal/analysis"
	"github.com/ademuri/last-fm-charts/internal/chart"
	"github.com/ademuri/last-fm-charts/internal/snapshot"
	"github.com/ademuri/last-fm-charts/internal/store"
)

type ChartConfig struct {
	DbPath        string
	User          string
	Chart         chart.Config
	MaxAdjusted   int
	MergeVariants bool
	Workers       int
	Start         time.Time
	End           time.Time

	// AlbumChartLength is the album chart cutoff; zero uses the default.
	AlbumChartLength int
}

var chartCmd = &cobra.Command{
	Use:   "chart [from] [to]",
	Short: "Recomputes the weekly chart history",
	Long: `Ranks every full week between from and to (default: the first listen
until now), ranks the albums of each week from their tracks, and replaces
the stored chart history. Prints the latest week of both charts.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		defer logger.Sync()

		config := ChartConfig{
			DbPath:        viper.GetString("database"),
			User:          currentUser(),
			Chart:         chartConfigFromFlags(),
			MaxAdjusted:   viper.GetInt("max_adjusted"),
			MergeVariants: viper.GetBool("merge_variants"),
			Workers:       viper.GetInt("workers"),

			AlbumChartLength: viper.GetInt("album_chart_length"),
		}
		if len(args) > 0 {
			start, end, err := parseDateRangeFromArgs(args)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			config.Start, config.End = start, end
		}

		if err := recomputeChart(config, logger); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)

	defaults := chart.DefaultConfig()

	var currentWeight, lastWeight, secondLastWeight int64
	chartCmd.Flags().Int64Var(&currentWeight, "current_weight", defaults.CurrentWeight, "Score weight of this week's plays")
	viper.BindPFlag("current_weight", chartCmd.Flags().Lookup("current_weight"))
	chartCmd.Flags().Int64Var(&lastWeight, "last_weight", defaults.LastWeight, "Score weight of last week's plays")
	viper.BindPFlag("last_weight", chartCmd.Flags().Lookup("last_weight"))
	chartCmd.Flags().Int64Var(&secondLastWeight, "second_last_weight", defaults.SecondLastWeight, "Score weight of the plays two weeks ago")
	viper.BindPFlag("second_last_weight", chartCmd.Flags().Lookup("second_last_weight"))

	var chartLength int
	chartCmd.Flags().IntVar(&chartLength, "chart_length", defaults.ChartLength, "Number of chart positions, 10 to 60")
	viper.BindPFlag("chart_length", chartCmd.Flags().Lookup("chart_length"))

	var minPlays int64
	chartCmd.Flags().Int64Var(&minPlays, "min_plays", 2, "Plays needed in a week to chart")
	viper.BindPFlag("min_plays", chartCmd.Flags().Lookup("min_plays"))

	var maxAdjusted int
	chartCmd.Flags().IntVar(&maxAdjusted, "max_adjusted", 25, "Maximum plays of one track counted per day, 0 for no limit")
	viper.BindPFlag("max_adjusted", chartCmd.Flags().Lookup("max_adjusted"))

	var mergeVariants bool
	chartCmd.Flags().BoolVar(&mergeVariants, "merge_variants", true, "Merge a newly charting track into an already charted track with the same artist and title")
	viper.BindPFlag("merge_variants", chartCmd.Flags().Lookup("merge_variants"))

	var workers int
	chartCmd.Flags().IntVar(&workers, "workers", 4, "Weeks loaded from the database at once")
	viper.BindPFlag("workers", chartCmd.Flags().Lookup("workers"))

	var albumChartLength int
	chartCmd.Flags().IntVar(&albumChartLength, "album_chart_length", chart.DefaultCollectionChartLength, "Number of album chart positions")
	viper.BindPFlag("album_chart_length", chartCmd.Flags().Lookup("album_chart_length"))
}

func chartConfigFromFlags() chart.Config {
	return chart.Config{
		CurrentWeight:    viper.GetInt64("current_weight"),
		LastWeight:       viper.GetInt64("last_weight"),
		SecondLastWeight: viper.GetInt64("second_last_weight"),
		ChartLength:      viper.GetInt("chart_length"),
		EntryPolicy:      chart.EntryPolicy{MinPlays: viper.GetInt64("min_plays")},
	}
}

func recomputeChart(config ChartConfig, logger *zap.Logger) error {
	if err := config.Chart.Validate(); err != nil {
		return err
	}
	albumConfig := chart.CollectionChartConfig{
		TrackChartLength: config.Chart.ChartLength,
		Length:           config.AlbumChartLength,
	}
	if albumConfig.Length == 0 {
		albumConfig.Length = chart.DefaultCollectionChartLength
	}
	if err := albumConfig.Validate(); err != nil {
		return err
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if config.Start.IsZero() {
		config.Start, err = db.GetFirstListen(config.User)
		if err != nil {
			return fmt.Errorf("getting first listen: %w", err)
		}
		if config.Start.IsZero() {
			return fmt.Errorf("no listens stored for %q, run update first", config.User)
		}
		config.End = time.Now()
	}

	all, res, err := db.LoadChart(config.User)
	if err != nil {
		return fmt.Errorf("loading chart: %w", err)
	}
	all.ClearEntries()

	loader := snapshot.NewLoader(db, config.User,
		snapshot.WithLogger(logger),
		snapshot.WithMaxPerDay(config.MaxAdjusted),
		snapshot.WithWorkers(config.Workers),
	)
	snapshots, err := loader.Load(context.Background(), config.Start, config.End)
	if err != nil {
		return err
	}

	// Tracks join the charting repository when they first chart, which is
	// when the new-entity hook gets to merge variants.
	charting := chart.NewMemoryRepository()
	var variants variantSource
	if config.MergeVariants {
		variants = db
	}
	builder, err := chart.NewBuilder(config.Chart, res, charting,
		chart.WithLogger(logger),
		chart.WithNewEntityFunc(variantMerger(variants, all, charting)),
	)
	if err != nil {
		return err
	}

	collections := all.Collections()
	var weeks, albumWeeks []chart.Week
	err = builder.Each(snapshots, func(w chart.Week) error {
		albums, err := chart.ChartCollections(collections, w, albumConfig)
		if err != nil {
			return err
		}
		weeks = append(weeks, w)
		albumWeeks = append(albumWeeks, albums)
		return nil
	})
	var short *chart.InsufficientHistoryError
	if errors.As(err, &short) {
		fmt.Printf("Not enough listening history to chart yet: %d full weeks, need %d\n", short.Have, short.Need)
		return nil
	}
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}

	run := store.NewRun(config.Chart, config.MaxAdjusted, time.Now())
	if err := db.SaveChart(config.User, run, all.Tracks(), collections); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}
	if err := db.SaveAliases(config.User, res.Pairs()); err != nil {
		return fmt.Errorf("saving aliases: %w", err)
	}
	logger.Info("saved chart",
		zap.String("run", run.ID),
		zap.Int("weeks", len(weeks)),
		zap.Int("tracks", len(charting.IDs())),
		zap.Int("albums", len(collections)),
	)

	printSheet(os.Stdout, weeks[len(weeks)-1], charting)
	printAlbumSheet(os.Stdout, albumWeeks[len(albumWeeks)-1], all)
	return nil
}

// variantSource finds other releases of the same track.
type variantSource interface {
	GetVariants(id string) ([]string, error)
}

// variantMerger returns a hook that merges a newly charting id into an
// already charted variant of it. Other ids are registered with the details
// loaded in all. A nil variants disables merging.
func variantMerger(variants variantSource, all, charted chart.Repository) chart.NewEntityFunc {
	return func(id string) (chart.Registration, error) {
		if variants != nil {
			ids, err := variants.GetVariants(id)
			if err != nil {
				return chart.Registration{}, err
			}
			for _, v := range ids {
				if _, ok := charted.Get(v); ok {
					return chart.Registration{MergeInto: v}, nil
				}
			}
		}
		if t, ok := all.Get(id); ok {
			return chart.Registration{Track: t}, nil
		}
		return chart.Registration{Track: chart.NewTrack(id, "")}, nil
	}
}

var sheetHeader = []string{"MV", "Title", "Artists", "TW", "LW", "OC", "PTS", "PLS", "PK"}

// sheetRows renders the charted positions of w, with each track's history
// cut off at w.
func sheetRows(w chart.Week, repo chart.Repository) [][]string {
	var rows [][]string
	for _, p := range w.Chart() {
		t, ok := repo.Get(p.ID)
		if !ok {
			continue
		}
		var entries []chart.Entry
		for _, e := range t.Entries() {
			if !e.End.After(w.End) {
				entries = append(entries, e)
			}
		}
		current, ok := t.Entry(w.End)
		if !ok {
			continue
		}

		lastWeek := "-"
		var previous *chart.Entry
		if e, ok := t.Entry(w.Start); ok {
			previous = &e
			lastWeek = strconv.Itoa(e.Rank)
		}

		rows = append(rows, []string{
			analysis.Move(current, previous, len(entries)).String(),
			t.Name,
			t.Credit(),
			strconv.Itoa(p.Rank),
			lastWeek,
			strconv.Itoa(len(entries)),
			strconv.FormatInt(p.Score, 10),
			strconv.FormatInt(p.Plays, 10),
			analysis.PeakLabel(entries),
		})
	}
	return rows
}

func printSheet(out io.Writer, w chart.Week, repo chart.Repository) {
	fmt.Fprintf(out, "Chart for the week of %s to %s\n", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))

	table := tablewriter.NewWriter(out)
	table.Header(sheetHeader)
	for _, row := range sheetRows(w, repo) {
		table.Append(row)
	}
	table.Render()
}

var albumSheetHeader = []string{"MV", "Title", "Artists", "TW", "LW", "OC", "PK", "UTS", "PLS"}

// albumSheetRows renders the charted albums of w, with each album's history
// cut off at w.
func albumSheetRows(w chart.Week, repo *chart.MemoryRepository) [][]string {
	var rows [][]string
	for _, p := range w.Chart() {
		c, ok := repo.Collection(p.ID)
		if !ok {
			continue
		}
		current, ok := c.Entry(w.End)
		if !ok {
			continue
		}
		var entries []chart.Entry
		for _, e := range c.Entries() {
			if !e.End.After(w.End) {
				entries = append(entries, e)
			}
		}

		lastWeek := "-"
		var previous *chart.Entry
		if e, ok := c.Entry(w.Start); ok {
			previous = &e
			lastWeek = strconv.Itoa(e.Rank)
		}

		rows = append(rows, []string{
			analysis.Move(current, previous, len(entries)).String(),
			c.Title,
			chart.JoinArtists(c.Artists),
			strconv.Itoa(p.Rank),
			lastWeek,
			strconv.Itoa(len(entries)),
			analysis.PeakLabel(entries),
			strconv.FormatInt(p.Score, 10),
			strconv.FormatInt(p.Plays, 10),
		})
	}
	return rows
}

func printAlbumSheet(out io.Writer, w chart.Week, repo *chart.MemoryRepository) {
	fmt.Fprintf(out, "Album chart for the week of %s to %s\n", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))

	table := tablewriter.NewWriter(out)
	table.Header(albumSheetHeader)
	for _, row := range albumSheetRows(w, repo) {
		table.Append(row)
	}
	table.Render()
}

// canonicalTracks drops the tracks that have been absorbed into another, whose
// plays already count towards their canonical track.
func canonicalTracks(repo *chart.MemoryRepository, res *chart.Resolver) []*chart.Track {
	var tracks []*chart.Track
	for _, t := range repo.Tracks() {
		if !res.IsAlias(t.ID) {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// loadChart reads the stored chart of user along with the configuration it
// was last computed with.
func loadChart(db *store.Store, user string) (*chart.MemoryRepository, *chart.Resolver, chart.Config, error) {
	repo, res, err := db.LoadChart(user)
	if err != nil {
		return nil, nil, chart.Config{}, fmt.Errorf("loading chart: %w", err)
	}
	run, ok, err := db.GetLatestRun(user)
	if err != nil {
		return nil, nil, chart.Config{}, err
	}
	if !ok {
		return repo, res, chart.DefaultConfig(), nil
	}
	return repo, res, run.Config, nil
}
