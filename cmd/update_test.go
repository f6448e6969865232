package cmd

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ademuri/last-fm-charts/internal/store"
	"github.com/ademuri/lastfm-go/lastfm"
)

func TestRetryServerErrors(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		calls int
	}{
		{"server error", &lastfm.LastfmError{Code: 503, Message: "Service Offline"}, 3},
		{"wrapped server error", errors.Join(errors.New("page 2"), &lastfm.LastfmError{Code: 500}), 3},
		{"client error", &lastfm.LastfmError{Code: 400, Message: "Invalid parameters"}, 1},
		{"other error", errors.New("connection reset"), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			calls := 0
			err := retry.Do(
				func() error {
					calls++
					return c.err
				},
				retryServerErrors(zap.NewNop()),
				retry.Attempts(3),
				retry.Delay(0),
				retry.DelayType(retry.FixedDelay),
				retry.LastErrorOnly(true),
			)
			assert.Equal(t, c.calls, calls)
			assert.Equal(t, c.err, err)
		})
	}
}

func setCredentials(t *testing.T, apiKey, secret string) {
	t.Helper()
	viper.Set("api_key", apiKey)
	viper.Set("secret", secret)
	t.Cleanup(func() {
		viper.Set("api_key", "")
		viper.Set("secret", "")
	})
}

func TestUpdateSkipsRecentlyUpdatedUser(t *testing.T) {
	setCredentials(t, "key", "secret")
	dbPath := filepath.Join(t.TempDir(), "lastfm.db")

	db, err := store.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.CreateUser("testuser"))
	updated := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, db.SetLastUpdated("testuser", updated))
	require.NoError(t, db.Close())

	// No request is made, so this passes without a network.
	err = updateDatabase(UpdateConfig{DbPath: dbPath, User: "testuser"}, zap.NewNop())
	require.NoError(t, err)

	db, err = store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.GetLastUpdated("testuser")
	require.NoError(t, err)
	assert.True(t, got.Equal(updated), "last updated moved to %v", got)
}

func TestUpdateRequiresCredentials(t *testing.T) {
	setCredentials(t, "", "")
	dbPath := filepath.Join(t.TempDir(), "lastfm.db")

	err := updateDatabase(UpdateConfig{DbPath: dbPath, User: "testuser"}, zap.NewNop())
	assert.ErrorContains(t, err, "api_key and secret")
}

func TestUpdateRejectsBadAfterDate(t *testing.T) {
	setCredentials(t, "key", "secret")
	dbPath := filepath.Join(t.TempDir(), "lastfm.db")

	err := updateDatabase(UpdateConfig{DbPath: dbPath, User: "testuser", After: "last week"}, zap.NewNop())
	assert.ErrorContains(t, err, "--after")
}
