package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cmdlens/internal/explain"
	"github.com/user/cmdlens/internal/safety"
)

func sampleEntries() []Entry {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	high := safety.CommandAnalysis{RiskLevel: safety.High}
	low := safety.CommandAnalysis{RiskLevel: safety.Low, Explanation: "List directory contents"}

	return []Entry{
		{
			ID: "E1", Command: "docker ps -a", Timestamp: base.Add(3 * time.Hour),
			Tags: []string{"docker"}, CommandType: "container", Complexity: "moderate",
			Explanation: &explain.Explanation{OverallExplanation: "Show all docker containers"},
		},
		{
			ID: "E2", Command: "docker rm -f web", Timestamp: base.Add(2 * time.Hour),
			Analysis: &high, IsFavorite: true, Tags: []string{"docker", "cleanup"}, CommandType: "container",
		},
		{
			ID: "E3", Command: "ls -la", Timestamp: base.Add(1 * time.Hour),
			Analysis: &low, CommandType: "file-listing", Complexity: "simple",
		},
	}
}

func ids(results []Result) []string {
	out := []string{}
	for _, r := range results {
		out = append(out, r.Entry.ID)
	}
	return out
}

func TestIndex_SearchScoring(t *testing.T) {
	idx := NewIndex(sampleEntries())
	require.Equal(t, 3, idx.Len())

	results := idx.Search("docker containers", Filters{}, 0)
	require.Len(t, results, 2)
	assert.Equal(t, "E1", results[0].Entry.ID)
	assert.Equal(t, 2, results[0].Score)
	assert.Equal(t, []string{"docker", "containers"}, results[0].Matched)
	assert.Equal(t, "E2", results[1].Entry.ID)
	assert.Equal(t, 1, results[1].Score)
}

func TestIndex_SearchTiesByRecency(t *testing.T) {
	idx := NewIndex(sampleEntries())
	assert.Equal(t, []string{"E1", "E2"}, ids(idx.Search("docker", Filters{}, 0)))
}

func TestIndex_SearchIgnoresShortWords(t *testing.T) {
	idx := NewIndex(sampleEntries())

	// "ls" is too short to score, so every entry matches with score zero.
	results := idx.Search("ls", Filters{}, 0)
	assert.Equal(t, []string{"E1", "E2", "E3"}, ids(results))
	for _, r := range results {
		assert.Zero(t, r.Score)
	}
}

func TestIndex_SearchLimit(t *testing.T) {
	idx := NewIndex(sampleEntries())
	assert.Len(t, idx.Search("", Filters{}, 2), 2)
}

func TestIndex_SearchFilters(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	high := safety.High
	yes := true
	no := false

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "none", filters: Filters{}, want: []string{"E1", "E2", "E3"}},
		{name: "tags all required", filters: Filters{Tags: []string{"docker", "CLEANUP"}}, want: []string{"E2"}},
		{name: "risk level", filters: Filters{RiskLevel: &high}, want: []string{"E2"}},
		{name: "favorite", filters: Filters{Favorite: &yes}, want: []string{"E2"}},
		{name: "not favorite", filters: Filters{Favorite: &no}, want: []string{"E1", "E3"}},
		{name: "since", filters: Filters{Since: base.Add(2 * time.Hour)}, want: []string{"E1", "E2"}},
		{name: "until", filters: Filters{Until: base.Add(2 * time.Hour)}, want: []string{"E2", "E3"}},
		{name: "command type", filters: Filters{CommandType: "container"}, want: []string{"E1", "E2"}},
		{name: "complexity", filters: Filters{Complexity: "simple"}, want: []string{"E3"}},
	}

	idx := NewIndex(sampleEntries())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(idx.Search("", tt.filters, 0)))
		})
	}
}

func TestIndex_Suggestions(t *testing.T) {
	idx := NewIndex(sampleEntries())

	assert.Equal(t, []string{"containers", "contents"}, idx.Suggestions("cont", 5))
	assert.Equal(t, []string{"docker"}, idx.Suggestions("DOCK", 5))
	assert.Equal(t, []string{"directory", "docker"}, idx.Suggestions("d", 2))
	assert.Empty(t, idx.Suggestions("  ", 5))
	assert.Empty(t, idx.Suggestions("docker", 5))
}

func TestIndex_PopularWords(t *testing.T) {
	idx := NewIndex(sampleEntries())

	top := idx.PopularWords(1)
	require.Len(t, top, 1)
	assert.Equal(t, WordCount{Word: "docker", Entries: 2}, top[0])
}
