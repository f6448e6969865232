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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/last-fm-charts/internal/analysis"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <track-id>",
	Short: "Shows the chart statistics of one track or album",
	Long: `Prints peak, weeks on chart, streaks, units and certification for a
track. With --album, the argument is an album id ("Artist - Album").`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printStats(os.Stdout, viper.GetString("database"), currentUser(), args[0],
			viper.GetBool("album"), viper.GetString("format"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	var format string
	statsCmd.Flags().StringVar(&format, "format", "table", "Output format: 'table' or 'yaml'")
	viper.BindPFlag("format", statsCmd.Flags().Lookup("format"))

	var album bool
	statsCmd.Flags().BoolVar(&album, "album", false, "Look up an album instead of a track")
	viper.BindPFlag("album", statsCmd.Flags().Lookup("album"))
}

func printStats(out io.Writer, dbPath, user, id string, album bool, format string) error {
	if format != "table" && format != "yaml" {
		return fmt.Errorf("invalid format %q", format)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, cfg, err := loadChart(db, user)
	if err != nil {
		return err
	}

	if album {
		c, ok := repo.Collection(id)
		if !ok {
			return fmt.Errorf("unknown album %q", id)
		}
		report := analysis.NewCollectionReport(c, cfg.ChartLength)
		if format == "yaml" {
			return writeYAML(out, report)
		}
		writeCollectionTable(out, report)
		return nil
	}

	canonical := res.ResolveOrSelf(id)
	t, ok := repo.Get(canonical)
	if !ok {
		return fmt.Errorf("unknown track %q", id)
	}
	report := analysis.NewTrackReport(t, res.Aliases(canonical), cfg.ChartLength)
	if format == "yaml" {
		return writeYAML(out, report)
	}
	writeTrackTable(out, report)
	return nil
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeTrackTable(out io.Writer, r analysis.TrackReport) {
	fmt.Fprintf(out, "%s by %s (%s)\n", r.Name, r.Artists, r.ID)

	summary := tablewriter.NewWriter(out)
	summary.Header([]string{"Stat", "Value"})
	rows := [][]string{
		{"Album", r.Album},
		{"Aliases", strings.Join(r.Aliases, ", ")},
		{"Plays", strconv.FormatInt(r.Plays, 10)},
		{"Units", strconv.FormatInt(r.Units, 10)},
		{"Certification", r.Certification},
		{"Units to next", strconv.FormatInt(r.UnitsToNext, 10)},
		{"Peak", r.Chart.Peak},
		{"Weeks on chart", strconv.Itoa(r.Chart.WeeksCharted)},
		{"Weeks in top 10", strconv.Itoa(r.Chart.WeeksTop10)},
		{"Weeks at #1", strconv.Itoa(r.Chart.WeeksNumberOne)},
		{"Longest streak", strconv.Itoa(r.Chart.LongestStreak)},
		{"Longest streak with gaps", strconv.Itoa(r.Chart.LongestStreakWithGaps)},
		{"Points", strconv.FormatInt(r.Chart.Points, 10)},
	}
	for _, row := range rows {
		summary.Append(row)
	}
	summary.Render()

	writeHistoryTable(out, r.Entries, "Score")
}

func writeHistoryTable(out io.Writer, entries []analysis.EntryReport, scoreLabel string) {
	if len(entries) == 0 {
		return
	}
	history := tablewriter.NewWriter(out)
	history.Header([]string{"Week", "MV", "Rank", "Plays", scoreLabel})
	for _, e := range entries {
		history.Append([]string{
			e.Start + " to " + e.End,
			e.Move,
			strconv.Itoa(e.Rank),
			strconv.FormatInt(e.Plays, 10),
			strconv.FormatInt(e.Score, 10),
		})
	}
	history.Render()
}

func writeCollectionTable(out io.Writer, r analysis.CollectionReport) {
	fmt.Fprintf(out, "%s by %s\n", r.Title, r.Artists)

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Stat", "Value"})
	rows := [][]string{
		{"Plays", strconv.FormatInt(r.Plays, 10)},
		{"Units", strconv.FormatInt(r.Units, 10)},
		{"Certification", r.Certification},
		{"Tracks", strconv.Itoa(r.Members)},
		{"Charting tracks", strconv.Itoa(r.ChartingMembers)},
		{"Top 10 hits", strconv.Itoa(r.Top10Hits)},
		{"Top track peak", strconv.Itoa(r.TopMemberPeak)},
		{"Album chart peak", r.Peak},
		{"Weeks on album chart", strconv.Itoa(r.WeeksCharted)},
		{"Weeks at #1", strconv.Itoa(r.WeeksNumberOne)},
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	writeHistoryTable(out, r.Entries, "Units")
}
