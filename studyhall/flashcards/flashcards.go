package flashcards

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/studyai"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateBatch stores generated cards for a file in one transaction
func (r *Repository) CreateBatch(ctx context.Context, fileID string, cards []studyai.Flashcard) ([]Flashcard, error) {
	if len(cards) == 0 {
		return []Flashcard{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, card := range cards {
		batch.Queue(queryInsert, fileID, card.Question, card.Answer)
	}

	br := tx.SendBatch(ctx, batch)
	created := make([]Flashcard, 0, len(cards))

	for i := range cards {
		card, err := scanFlashcard(br.QueryRow())
		if err != nil {
			br.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to insert flashcard %d: %w", i, err)
		}

		created = append(created, *card)
	}

	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

func (r *Repository) ListByFile(ctx context.Context, fileID string) ([]Flashcard, error) {
	rows, err := r.db.Query(ctx, queryListByFile, fileID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	cards := []Flashcard{}

	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, err
		}

		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func scanFlashcard(row pgx.Row) (*Flashcard, error) {
	var card Flashcard

	if err := row.Scan(&card.ID, &card.FileID, &card.Question, &card.Answer, &card.CreatedAt); err != nil {
		return nil, err
	}

	return &card, nil
}
