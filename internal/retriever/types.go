package retriever

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/llm"
)

const (
	defaultTopK = 5

	// reciprocal rank fusion constant
	rrfK = 60
)

// searches the embedded chunks of a single uploaded file
type Client struct {
	pool     *pgxpool.Pool
	embedder llm.Embedder
	topK     int
}

type SearchResult struct {
	ID           string
	ChunkIndex   int
	SectionTitle string
	Content      string
	Similarity   float32
}
