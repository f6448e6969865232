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

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/analysis"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Lists the tracks with the most consecutive weeks on chart",
	Run: func(cmd *cobra.Command, args []string) {
		err := printStreaks(os.Stdout, viper.GetString("database"), currentUser(),
			viper.GetInt("top"), viper.GetBool("allow_gap"), viper.GetInt("limit"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(streaksCmd)

	var top int
	streaksCmd.Flags().IntVar(&top, "top", 0, "Only count weeks at this position or better, 0 for the whole chart")
	viper.BindPFlag("top", streaksCmd.Flags().Lookup("top"))

	var allowGap bool
	streaksCmd.Flags().BoolVar(&allowGap, "allow_gap", false, "Let a single missing week continue a streak")
	viper.BindPFlag("allow_gap", streaksCmd.Flags().Lookup("allow_gap"))

	var limit int
	streaksCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of tracks to show")
	viper.BindPFlag("limit", streaksCmd.Flags().Lookup("limit"))
}

func printStreaks(out io.Writer, dbPath, user string, top int, allowGap bool, limit int) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, _, err := loadChart(db, user)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"#", "Title", "Artists", "Weeks"})
	for i, row := range analysis.Streaks(canonicalTracks(repo, res), top, allowGap, limit) {
		table.Append([]string{
			strconv.Itoa(i + 1),
			row.Track.Name,
			row.Track.Credit(),
			strconv.Itoa(row.Weeks),
		})
	}
	table.Render()
	return nil
}
