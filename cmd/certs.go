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
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/analysis"
	"github.com/ademuri/last-fm-charts/internal/cert"
	"github.com/ademuri/last-fm-charts/internal/chart"
	"github.com/ademuri/last-fm-charts/internal/store"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Lists certified tracks or albums",
	Long: `Prints every track (or album, with --albums) certified at least --min,
highest units first, with the units needed for the next certification.`,
	Run: func(cmd *cobra.Command, args []string) {
		minimum, err := cert.Parse(viper.GetString("min"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		err = printCerts(os.Stdout, viper.GetString("database"), currentUser(), viper.GetBool("albums"), minimum)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(certsCmd)

	var minCert string
	certsCmd.Flags().StringVar(&minCert, "min", "G", "Lowest certification to list, e.g. 'G', 'P', '3xP' or 'D'")
	viper.BindPFlag("min", certsCmd.Flags().Lookup("min"))

	var albums bool
	certsCmd.Flags().BoolVar(&albums, "albums", false, "List albums instead of tracks")
	viper.BindPFlag("albums", certsCmd.Flags().Lookup("albums"))
}

// certRow is one certified entity, before rendering.
type certRow struct {
	Title   string
	Artists string
	Units   int64
	Cert    cert.Certification
	Kind    cert.Kind
}

func (r certRow) strings() []string {
	next := cert.Next(r.Cert, r.Kind)
	return []string{
		r.Title,
		r.Artists,
		strconv.FormatInt(r.Units, 10),
		r.Cert.ExpandedSymbol(),
		next.Symbol(),
		strconv.FormatInt(cert.UnitsToNext(r.Units, r.Kind), 10),
	}
}

// trackCertRows returns the tracks certified at least minimum, highest units
// first.
func trackCertRows(tracks []*chart.Track, chartLength int, minimum cert.Certification) []certRow {
	var rows []certRow
	for _, t := range tracks {
		units := analysis.TrackUnits(t, chartLength)
		c := cert.Classify(units, cert.Track)
		if c.Tier == cert.None || c.Less(minimum) {
			continue
		}
		rows = append(rows, certRow{Title: t.Name, Artists: t.Credit(), Units: units, Cert: c, Kind: cert.Track})
	}
	sortCertRows(rows)
	return rows
}

func collectionCertRows(collections []*chart.Collection, chartLength int, minimum cert.Certification) []certRow {
	var rows []certRow
	for _, c := range collections {
		units := analysis.CollectionUnits(c, chartLength)
		certification := cert.Classify(units, cert.Collection)
		if certification.Tier == cert.None || certification.Less(minimum) {
			continue
		}
		rows = append(rows, certRow{
			Title:   c.Title,
			Artists: chart.JoinArtists(c.Artists),
			Units:   units,
			Cert:    certification,
			Kind:    cert.Collection,
		})
	}
	sortCertRows(rows)
	return rows
}

func sortCertRows(rows []certRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Units != rows[j].Units {
			return rows[i].Units > rows[j].Units
		}
		return rows[i].Title < rows[j].Title
	})
}

func printCerts(out io.Writer, dbPath, user string, albums bool, minimum cert.Certification) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, res, cfg, err := loadChart(db, user)
	if err != nil {
		return err
	}

	var rows []certRow
	if albums {
		rows = collectionCertRows(repo.Collections(), cfg.ChartLength, minimum)
	} else {
		rows = trackCertRows(canonicalTracks(repo, res), cfg.ChartLength, minimum)
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Title", "Artists", "Units", "Cert", "Next", "Units to next"})
	for _, row := range rows {
		table.Append(row.strings())
	}
	table.Render()
	return nil
}
