package retriever

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/logger"
)

func NewClient(pool *pgxpool.Pool, embedder llm.Embedder, topK int) *Client {
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Client{
		pool:     pool,
		embedder: embedder,
		topK:     topK,
	}
}

func (c *Client) TopK() int {
	return c.topK
}

// VectorSearch returns the chunks of fileID closest to the query embedding
func (c *Client) VectorSearch(ctx context.Context, fileID, queryText string, topK int) ([]SearchResult, error) {
	embedding, err := c.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	rows, err := c.pool.Query(ctx, vectorSearchQuery, fileID, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}

	return scanResults(rows)
}

// KeywordSearch ranks chunks of fileID by full-text match
func (c *Client) KeywordSearch(ctx context.Context, fileID, queryText string, topK int) ([]SearchResult, error) {
	rows, err := c.pool.Query(ctx, keywordSearchQuery, fileID, queryText, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute keyword query: %w", err)
	}

	return scanResults(rows)
}

// SearchFile runs vector and keyword search in parallel and fuses the rankings.
// keyword failures degrade to vector-only results.
func (c *Client) SearchFile(ctx context.Context, fileID, queryText string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = c.topK
	}

	candidates := topK + 2 // a few extra for merging

	var vectorResults, keywordResults []SearchResult
	var vectorErr, keywordErr error
	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = c.VectorSearch(ctx, fileID, queryText, candidates)
	}()

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = c.KeywordSearch(ctx, fileID, queryText, candidates)
	}()

	wg.Wait()

	if vectorErr != nil {
		return nil, fmt.Errorf("vector search failed: %w", vectorErr)
	}

	if keywordErr != nil {
		logger.FromContext(ctx).Warn("keyword search failed, using vector results only",
			"file_id", fileID,
			"error", keywordErr,
		)

		keywordResults = nil
	}

	return mergeAndRank(vectorResults, keywordResults, topK), nil
}

func scanResults(rows pgx.Rows) ([]SearchResult, error) {
	defer rows.Close()

	var results []SearchResult

	for rows.Next() {
		var result SearchResult

		err := rows.Scan(
			&result.ID,
			&result.ChunkIndex,
			&result.SectionTitle,
			&result.Content,
			&result.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// fuses two rankings with reciprocal rank fusion, deduplicating by chunk id.
// the vector similarity is kept on the merged result when a chunk appears in both.
func mergeAndRank(vector, keyword []SearchResult, topK int) []SearchResult {
	scores := make(map[string]float64, len(vector)+len(keyword))
	byID := make(map[string]SearchResult, len(vector)+len(keyword))
	order := make([]string, 0, len(vector)+len(keyword))

	add := func(results []SearchResult, keepExisting bool) {
		for rank, r := range results {
			if _, seen := byID[r.ID]; !seen {
				order = append(order, r.ID)
				byID[r.ID] = r
			} else if !keepExisting {
				byID[r.ID] = r
			}

			scores[r.ID] += 1.0 / float64(rrfK+rank+1)
		}
	}

	add(vector, false)
	add(keyword, true)

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > topK {
		order = order[:topK]
	}

	merged := make([]SearchResult, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}

	return merged
}
