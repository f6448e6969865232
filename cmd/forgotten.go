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
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/analysis"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var forgottenCmd = &cobra.Command{
	Use:   "forgotten",
	Short: "Surfaces tracks that charted heavily in the past but not recently",
	Long:  `Identifies tracks that have fallen off the chart, grouped by how many weeks they charted.`,
	Run: func(cmd *cobra.Command, args []string) {
		pd, err := parseSingleDatestring(viper.GetString("last_charted_before"))
		if err != nil {
			fmt.Printf("invalid last_charted_before date: %v\n", err)
			os.Exit(1)
		}
		config := analysis.ForgottenConfig{
			LastChartedBefore: pd.Date,
			ResultsPerBand:    viper.GetInt("results"),
			SortBy:            viper.GetString("sort"),
		}
		err = printForgotten(os.Stdout, viper.GetString("database"), currentUser(), config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forgottenCmd)

	var resultsPerBand int
	forgottenCmd.Flags().IntVar(&resultsPerBand, "results", 10, "Max results shown per interest band")
	viper.BindPFlag("results", forgottenCmd.Flags().Lookup("results"))

	var sortBy string
	forgottenCmd.Flags().StringVar(&sortBy, "sort", "dormancy", "Sort order: 'dormancy' or 'weeks'")
	viper.BindPFlag("sort", forgottenCmd.Flags().Lookup("sort"))

	var lastChartedBefore string
	forgottenCmd.Flags().StringVar(&lastChartedBefore, "last_charted_before", "26w", "Only include tracks that last charted before this date (YYYY-MM-DD or duration like 26w)")
	viper.BindPFlag("last_charted_before", forgottenCmd.Flags().Lookup("last_charted_before"))
}

func printForgotten(out io.Writer, dbPath, user string, config analysis.ForgottenConfig) error {
	if config.SortBy != "dormancy" && config.SortBy != "weeks" {
		return fmt.Errorf("invalid sort %q", config.SortBy)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, _, err := loadChart(db, user)
	if err != nil {
		return err
	}

	results := analysis.Forgotten(canonicalTracks(repo, res), config, time.Now())
	fmt.Fprintln(out, "## Forgotten Tracks")
	for _, band := range analysis.Bands {
		printForgottenBand(out, results, band)
	}
	return nil
}

func printForgottenBand(out io.Writer, results map[string][]analysis.ForgottenTrack, band string) {
	items, ok := results[band]
	if !ok || len(items) == 0 {
		return
	}

	fmt.Fprintf(out, "\n### %s Interest (%d+ weeks on chart)\n", band, analysis.GetThreshold(band))

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Title", "Artists", "Weeks", "Peak", "Last Charted"})
	for _, f := range items {
		table.Append([]string{
			f.Track.Name,
			f.Track.Credit(),
			strconv.Itoa(f.WeeksCharted),
			strconv.Itoa(f.Peak),
			f.LastCharted.Format("2006-01-02"),
		})
	}
	table.Render()
}
