package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(results []SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestMergeAndRank(t *testing.T) {
	vector := []SearchResult{
		{ID: "1", Similarity: 0.95},
		{ID: "2", Similarity: 0.90},
		{ID: "3", Similarity: 0.85},
	}

	keyword := []SearchResult{
		{ID: "3", Similarity: 0.4}, // duplicate, rank score not similarity
		{ID: "4", Similarity: 0.2},
	}

	merged := mergeAndRank(vector, keyword, 10)

	require.Len(t, merged, 4)

	// 3 appears in both rankings and is fused to the top
	assert.Equal(t, "3", merged[0].ID)
	assert.InDelta(t, 0.85, merged[0].Similarity, 1e-6, "vector similarity is kept")

	seen := make(map[string]bool)
	for _, r := range merged {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestMergeAndRank_TopK(t *testing.T) {
	vector := []SearchResult{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	merged := mergeAndRank(vector, nil, 2)

	assert.Equal(t, []string{"1", "2"}, ids(merged))
}

func TestMergeAndRank_KeywordOnly(t *testing.T) {
	merged := mergeAndRank(nil, []SearchResult{{ID: "k1"}, {ID: "k2"}}, 5)

	assert.Equal(t, []string{"k1", "k2"}, ids(merged))
}

func TestMergeAndRank_Empty(t *testing.T) {
	assert.Empty(t, mergeAndRank(nil, nil, 5))
}

func TestNewClient_DefaultTopK(t *testing.T) {
	assert.Equal(t, defaultTopK, NewClient(nil, nil, 0).TopK())
	assert.Equal(t, 8, NewClient(nil, nil, 8).TopK())
}
