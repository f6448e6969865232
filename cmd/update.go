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
	"os"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ademuri/last-fm-charts/internal/store"
	"github.com/ademuri/lastfm-go/lastfm"
)

const userAgent = "last-fm-charts/1.0"

type UpdateConfig struct {
	DbPath string
	User   string
	After  string
	Force  bool
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches data from last.fm",
	Long:  `Stores scrobbles in a local SQLite database for charting.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		defer logger.Sync()

		config := UpdateConfig{
			DbPath: viper.GetString("database"),
			User:   currentUser(),
			After:  viper.GetString("after"),
			Force:  viper.GetBool("force"),
		}

		err := updateDatabase(config, logger)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var afterString string
	updateCmd.Flags().StringVar(&afterString, "after", "", "Only get listening data after this date, in yyyy-mm-dd format")
	viper.BindPFlag("after", updateCmd.Flags().Lookup("after"))

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Get all listening data, regardless of what's already present (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))
}

func newLastfmClient() (*lastfm.Api, error) {
	apiKey, secret := viper.GetString("api_key"), viper.GetString("secret")
	if apiKey == "" || secret == "" {
		return nil, errors.New("api_key and secret must be set to talk to last.fm")
	}
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent(userAgent)
	return client, nil
}

// retryServerErrors retries last.fm 5xx responses.
func retryServerErrors(logger *zap.Logger) retry.Option {
	return retry.RetryIf(func(err error) bool {
		var lerr *lastfm.LastfmError
		if errors.As(err, &lerr) && lerr.Code/100 == 5 {
			logger.Warn("last.fm errored, retrying", zap.Error(lerr))
			return true
		}
		return false
	})
}

func updateDatabase(config UpdateConfig, logger *zap.Logger) error {
	var after time.Time
	var err error
	if len(config.After) > 0 {
		after, err = time.Parse("2006-01-02", config.After)
		if err != nil {
			return fmt.Errorf("--after: %w", err)
		}
	}

	user := config.User
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	lastfmClient, err := newLastfmClient()
	if err != nil {
		return err
	}

	err = db.CreateUser(user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		logger.Info("user data was already updated in the past 24 hours", zap.String("user", user))
		return nil
	}
	logger.Info("user data was last updated", zap.String("date", lastUpdated.Format("2006-01-02")))

	sessionKey, err := db.GetSessionKey(user)
	if err != nil {
		return err
	}
	if sessionKey != "" {
		lastfmClient.SetSession(sessionKey)
		logger.Info("using session key", zap.String("user", user))
	}

	latestListen, err := db.GetLatestListen(user)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}
	logger.Info("latest local listening data", zap.String("date", latestListen.Format("2006-01-02")))

	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)
	page := 1 // First page is 1
	pages := 0
	for {
		var recentTracks lastfm.UserGetRecentTracks
		err := retry.Do(
			func() error {
				var err error
				recentTracks, err = lastfmClient.User.GetRecentTracks(lastfm.P{
					"limit": 200,
					"page":  page,
					"user":  user,
				})
				return err
			},
			retryServerErrors(logger),
		)
		if err != nil {
			return fmt.Errorf("fetching recent tracks: %w", err)
		}

		if pages == 0 {
			pages = recentTracks.TotalPages
		}
		if len(recentTracks.Tracks) == 0 {
			break
		}

		var tracksToImport []store.TrackImport
		for _, t := range recentTracks.Tracks {
			// The track playing right now has no date yet.
			if t.Date.Uts == "" {
				continue
			}
			tracksToImport = append(tracksToImport, store.TrackImport{
				Artist:    t.Artist.Name,
				Album:     t.Album.Name,
				TrackName: t.Name,
				DateUTS:   t.Date.Uts,
			})
		}
		if len(tracksToImport) == 0 {
			break
		}

		err = db.AddRecentTracks(user, tracksToImport)
		if err != nil {
			return fmt.Errorf("inserting recent tracks (page %d): %w", page, err)
		}

		oldestDateUts, err := strconv.ParseInt(tracksToImport[len(tracksToImport)-1].DateUTS, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing date: %w", err)
		}
		oldestDate := time.Unix(oldestDateUts, 0)

		logger.Info("downloaded page",
			zap.Int("page", page),
			zap.Int("pages", pages),
			zap.String("oldest", oldestDate.Format("2006-01-02")),
		)
		page += 1

		if !after.IsZero() && oldestDate.Before(after) {
			break
		}
		if page > pages {
			break
		}
		if !config.Force && !latestListen.IsZero() && oldestDate.Before(latestListen.AddDate(0, 0, -7)) {
			logger.Info("refreshed back to existing data")
			break
		}

		if err := limiter.Wait(context.Background()); err != nil {
			return err
		}
	}

	return db.SetLastUpdated(user, now)
}
