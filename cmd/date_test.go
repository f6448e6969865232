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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSingleDatestring(t *testing.T) {
	cases := []struct {
		in   string
		want ParsedDate
	}{
		{"2020", ParsedDate{Date: day(2020, time.January, 1), Year: true}},
		{"2020-03", ParsedDate{Date: day(2020, time.March, 1), Month: true}},
		{"2020-03-15", ParsedDate{Date: day(2020, time.March, 15), Day: true}},
	}
	for _, c := range cases {
		got, err := parseSingleDatestring(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseSingleDatestringRelative(t *testing.T) {
	now := time.Now()
	cases := []struct {
		in   string
		want time.Time
	}{
		{"3d", now.AddDate(0, 0, -3)},
		{"12w", now.AddDate(0, 0, -84)},
		{"2m", now.AddDate(0, -2, 0)},
		{"1y", now.AddDate(-1, 0, 0)},
		{"0w", now},
	}
	for _, c := range cases {
		got, err := parseSingleDatestring(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, got.Relative, c.in)
		assert.False(t, got.Year || got.Month || got.Day, c.in)
		assert.WithinDuration(t, c.want, got.Date, time.Minute, c.in)
	}
}

func TestParseSingleDatestringInvalid(t *testing.T) {
	for _, in := range []string{"", "20", "2020-1", "2020-13", "2020-02-30", "12x", "w", "-3d", "yesterday"} {
		_, err := parseSingleDatestring(in)
		assert.Error(t, err, in)
	}
}

func TestImplicitDateRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end time.Time
	}{
		{"2020", day(2020, time.January, 1), day(2021, time.January, 1)},
		{"2020-02", day(2020, time.February, 1), day(2020, time.March, 1)},
		{"2020-02-28", day(2020, time.February, 28), day(2020, time.February, 29)},
		{"2020-12-31", day(2020, time.December, 31), day(2021, time.January, 1)},
	}
	for _, c := range cases {
		start, end, err := parseDateRangeFromArgs([]string{c.in})
		require.NoError(t, err, c.in)
		assert.Equal(t, c.start, start, c.in)
		assert.Equal(t, c.end, end, c.in)
	}
}

func TestImplicitDateRangeRelative(t *testing.T) {
	start, end, err := parseDateRangeFromArgs([]string{"4w"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), end, time.Minute)
	assert.WithinDuration(t, end.AddDate(0, 0, -28), start, time.Minute)
}

func TestExplicitDateRange(t *testing.T) {
	start, end, err := parseDateRangeFromArgs([]string{"2020", "2020-06-15"})
	require.NoError(t, err)
	assert.Equal(t, day(2020, time.January, 1), start)
	assert.Equal(t, day(2020, time.June, 15), end)

	start, end, err = parseDateRangeFromArgs([]string{"26w", "2w"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -182), start, time.Minute)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -14), end, time.Minute)

	_, _, err = parseDateRangeFromArgs([]string{"2020", "June"})
	assert.Error(t, err)
	_, _, err = parseDateRangeFromArgs([]string{"2020-00", "2021"})
	assert.Error(t, err)
}

func TestDateRangeArgCount(t *testing.T) {
	_, _, err := parseDateRangeFromArgs(nil)
	assert.Error(t, err)
	_, _, err = parseDateRangeFromArgs([]string{"2020", "2021", "2022"})
	assert.Error(t, err)
}
