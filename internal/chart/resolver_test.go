package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnknown(t *testing.T) {
	r := NewResolver(nil)

	_, ok := r.Resolve("a")
	assert.False(t, ok)
	assert.Equal(t, "a", r.ResolveOrSelf("a"))

	r.Register("a")
	c, ok := r.Resolve("a")
	assert.True(t, ok)
	assert.Equal(t, "a", c)
	assert.False(t, r.IsAlias("a"))
}

func TestRegisterAliasFlattensChains(t *testing.T) {
	r := NewResolver(nil)

	require.NoError(t, r.RegisterAlias("b", "a"))
	require.NoError(t, r.RegisterAlias("c", "b"))

	assert.Equal(t, "a", r.ResolveOrSelf("c"))
	assert.True(t, r.IsAlias("c"))
	assert.Equal(t, []string{"b", "c"}, r.Aliases("a"))
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs("a"))
	assert.Equal(t, map[string]string{"b": "a", "c": "a"}, r.Pairs())
}

func TestRegisterAliasIdempotent(t *testing.T) {
	r := NewResolver(nil)

	require.NoError(t, r.RegisterAlias("b", "a"))
	require.NoError(t, r.RegisterAlias("b", "a"))
	require.NoError(t, r.RegisterAlias("a", "a"))
	assert.Equal(t, map[string]string{"b": "a"}, r.Pairs())
}

func TestRegisterAliasAbsorbsCanonicalWithoutHistory(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.Add(NewTrack("old", "")))
	r := NewResolver(repo)

	require.NoError(t, r.RegisterAlias("old-alt", "old"))
	require.NoError(t, r.RegisterAlias("old", "new"))

	assert.Equal(t, "new", r.ResolveOrSelf("old"))
	assert.Equal(t, "new", r.ResolveOrSelf("old-alt"))
}

func TestRegisterAliasConflicts(t *testing.T) {
	repo := NewMemoryRepository()
	charted := NewTrack("charted", "")
	charted.AddEntry(Entry{Start: firstWeek, End: firstWeek.AddDate(0, 0, 7), Plays: 3, Rank: 1})
	require.NoError(t, repo.Add(charted))

	r := NewResolver(repo)
	r.Register("charted")
	require.NoError(t, r.RegisterAlias("b", "a"))

	var conflict *ConflictError

	err := r.RegisterAlias("b", "z")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "b", conflict.Alias)
	assert.Equal(t, "a", r.ResolveOrSelf("b"))

	err = r.RegisterAlias("charted", "a")
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "history")
	assert.Equal(t, "charted", r.ResolveOrSelf("charted"))

	assert.Error(t, r.RegisterAlias("", "a"))
}
