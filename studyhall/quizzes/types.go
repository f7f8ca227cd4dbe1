package quizzes

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

type Quiz struct {
	ID            string    `json:"id"`
	FileID        string    `json:"file_id"`
	QuestionType  string    `json:"question_type"`
	Difficulty    string    `json:"difficulty"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	CreatedAt     time.Time `json:"created_at"`
}
