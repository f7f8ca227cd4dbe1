package quizzes

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

// CreateBatch stores generated quiz items for a file in one transaction
func (r *Repository) CreateBatch(ctx context.Context, fileID string, items []studyai.QuizItem) ([]Quiz, error) {
	if len(items) == 0 {
		return []Quiz{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, item := range items {
		// initialize empty arrays if nil to avoid null in the column
		options := item.Options
		if options == nil {
			options = []string{}
		}

		batch.Queue(queryInsert, fileID, item.QuestionType, item.Difficulty, item.Question, options, item.CorrectAnswer)
	}

	br := tx.SendBatch(ctx, batch)
	created := make([]Quiz, 0, len(items))

	for i := range items {
		quiz, err := scanQuiz(br.QueryRow())
		if err != nil {
			br.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to insert quiz item %d: %w", i, err)
		}

		created = append(created, *quiz)
	}

	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

func (r *Repository) ListByFile(ctx context.Context, fileID string) ([]Quiz, error) {
	rows, err := r.db.Query(ctx, queryListByFile, fileID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	items := []Quiz{}

	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, *quiz)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanQuiz(row pgx.Row) (*Quiz, error) {
	var q Quiz

	err := row.Scan(
		&q.ID,
		&q.FileID,
		&q.QuestionType,
		&q.Difficulty,
		&q.Question,
		&q.Options,
		&q.CorrectAnswer,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}
