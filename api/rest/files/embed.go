package files

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"codeberg.org/studyhall/server/internal/llm"
)

// embeds texts in fixed-size batches, a few batches in flight at once.
// the result is index-aligned with texts.
func embedAll(ctx context.Context, embedder llm.Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		g.Go(func() error {
			batch, err := embedder.GenerateEmbeddings(ctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}

			if len(batch) != end-start {
				return fmt.Errorf("embed chunks %d-%d: got %d embeddings", start, end-1, len(batch))
			}

			copy(embeddings[start:end], batch)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return embeddings, nil
}
