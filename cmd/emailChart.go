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
	"errors"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/last-fm-charts/internal/chart"
	"github.com/ademuri/last-fm-charts/internal/store"
)

type EmailChartConfig struct {
	DbPath      string
	User        string
	From        string
	To          string
	SendgridKey string
	DryRun      bool
}

var emailChartCmd = &cobra.Command{
	Use:   "email-chart <address>",
	Short: "Emails the latest chart week",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := EmailChartConfig{
			DbPath:      viper.GetString("database"),
			User:        currentUser(),
			From:        viper.GetString("from"),
			To:          args[0],
			SendgridKey: viper.GetString("sendgrid_api_key"),
			DryRun:      viper.GetBool("dry_run"),
		}
		if err := emailChart(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailChartCmd)

	var dryRun bool
	emailChartCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dry_run", emailChartCmd.Flags().Lookup("dry_run"))
}

func emailChart(config EmailChartConfig) error {
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo, _, _, err := loadChart(db, config.User)
	if err != nil {
		return err
	}
	week, ok := latestWeek(repo)
	if !ok {
		return fmt.Errorf("no chart stored for %q, run chart first", config.User)
	}

	subject, body := chartEmailContent(config.User, week, repo)
	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}
	if config.From == "" || config.SendgridKey == "" {
		return errors.New("from and sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("last-fm-charts", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, body)
	client := sendgrid.NewSendClient(config.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sending email: status %d: %s", resp.StatusCode, resp.Body)
	}
	fmt.Printf("Sent chart for the week ending %s to %s\n", week.End.Format("2006-01-02"), config.To)
	return nil
}

// latestWeek rebuilds the most recent stored chart week from the entries in
// repo. ok is false when nothing has charted.
func latestWeek(repo *chart.MemoryRepository) (week chart.Week, ok bool) {
	var end time.Time
	for _, t := range repo.Tracks() {
		for _, e := range t.Entries() {
			if e.End.After(end) {
				end, week.Start = e.End, e.Start
			}
		}
	}
	if end.IsZero() {
		return chart.Week{}, false
	}
	week.End = end

	for _, t := range repo.Tracks() {
		if e, ok := t.Entry(end); ok {
			week.Positions = append(week.Positions, chart.Position{
				ID:      t.ID,
				Rank:    e.Rank,
				Score:   e.Score,
				Plays:   e.Plays,
				Charted: true,
			})
		}
	}
	sortPositions(week.Positions)
	return week, true
}

// albumWeek rebuilds the stored album chart for the week of w.
func albumWeek(repo *chart.MemoryRepository, w chart.Week) chart.Week {
	albums := chart.Week{Start: w.Start, End: w.End}
	for _, c := range repo.Collections() {
		if e, ok := c.Entry(w.End); ok {
			albums.Positions = append(albums.Positions, chart.Position{
				ID:      c.ID,
				Rank:    e.Rank,
				Score:   e.Score,
				Plays:   e.Plays,
				Charted: true,
			})
		}
	}
	sortPositions(albums.Positions)
	return albums
}

func sortPositions(positions []chart.Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Rank != positions[j].Rank {
			return positions[i].Rank < positions[j].Rank
		}
		return positions[i].ID < positions[j].ID
	})
}

func chartEmailContent(user string, week chart.Week, repo *chart.MemoryRepository) (subject string, body string) {
	subject = fmt.Sprintf("Chart for %s, week of %s to %s", user,
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"))

	var sb strings.Builder
	sb.WriteString(`<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	fmt.Fprintf(&sb, "<h2>%s</h2>\n", html.EscapeString(subject))
	writeHTMLTable(&sb, sheetHeader, sheetRows(week, repo))
	if albums := albumSheetRows(albumWeek(repo, week), repo); len(albums) > 0 {
		sb.WriteString("<h2>Albums</h2>\n")
		writeHTMLTable(&sb, albumSheetHeader, albums)
	}
	sb.WriteString("  </body>\n</html>\n")
	return subject, sb.String()
}

func writeHTMLTable(sb *strings.Builder, header []string, rows [][]string) {
	sb.WriteString("<table>\n<thead><tr>")
	for _, h := range header {
		fmt.Fprintf(sb, "<th>%s</th>", h)
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, column := range row {
			fmt.Fprintf(sb, "<td>%s</td>", html.EscapeString(column))
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
}
