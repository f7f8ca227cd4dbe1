package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"codeberg.org/studyhall/server/internal/chunker"
)

var ErrLengthMismatch = errors.New("chunks and embeddings length mismatch")

// stores embedded document chunks in postgres
type Client struct {
	pool *pgxpool.Pool
}

func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// replaces every chunk of a file in a single transaction
func (c *Client) InsertChunksBatch(ctx context.Context, fileID string, chunks []chunker.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return ErrLengthMismatch
	}

	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, deleteFileChunksQuery, fileID); err != nil {
		return fmt.Errorf("failed to clear previous chunks: %w", err)
	}

	batch := &pgx.Batch{}

	for i, chunk := range chunks {
		batch.Queue(insertChunkQuery,
			fileID,
			chunk.Index,
			chunk.SectionTitle,
			chunk.Content,
			pgvector.NewVector(embeddings[i]),
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	// must close batch results before committing, otherwise connection is still "busy"
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (c *Client) DeleteFileChunks(ctx context.Context, fileID string) error {
	if _, err := c.pool.Exec(ctx, deleteFileChunksQuery, fileID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	return nil
}

func (c *Client) CountFileChunks(ctx context.Context, fileID string) (int, error) {
	var count int

	if err := c.pool.QueryRow(ctx, countFileChunksQuery, fileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}

	return count, nil
}
