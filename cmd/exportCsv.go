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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/chart"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var exportCsvCmd = &cobra.Command{
	Use:   "export-csv <path>",
	Short: "Writes the whole chart history to a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := exportCsv(viper.GetString("database"), currentUser(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCsvCmd)
}

var csvHeader = []string{"track_id", "name", "artists", "album", "start", "end", "rank", "plays", "score"}

func exportCsv(dbPath, user, path string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, _, err := loadChart(db, user)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeChartCsv(f, canonicalTracks(repo, res)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeChartCsv writes one row per entry, grouped by track.
func writeChartCsv(out io.Writer, tracks []*chart.Track) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tracks {
		for _, e := range t.Entries() {
			err := w.Write([]string{
				t.ID,
				t.Name,
				t.Credit(),
				t.Album,
				e.Start.Format("2006-01-02"),
				e.End.Format("2006-01-02"),
				strconv.Itoa(e.Rank),
				strconv.FormatInt(e.Plays, 10),
				strconv.FormatInt(e.Score, 10),
			})
			if err != nil {
				return fmt.Errorf("writing %s: %w", t.ID, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}
