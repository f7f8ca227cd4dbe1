package studyai

import (
	"context"
	"errors"

	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/retriever"
)

// answer given when retrieval finds nothing for the question
const NoContextAnswer = "I don't have enough information in the notes."

var (
	ErrEmptySource    = errors.New("no source text to generate from")
	ErrMalformedReply = errors.New("model reply could not be parsed")
)

// interface for chunk retrieval scoped to one file
type Retriever interface {
	SearchFile(ctx context.Context, fileID, query string, topK int) ([]retriever.SearchResult, error)
}

// turns document text into study material with a language model
type Assistant struct {
	retriever Retriever
	generator llm.TextGenerator
	topK      int
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizItem struct {
	QuestionType  string   `json:"question_type"` // "mcq" or "fill_in_the_blank"
	Difficulty    string   `json:"difficulty"`    // "easy", "medium" or "hard"
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
}

type TutorAnswer struct {
	Answer          string `json:"answer"`
	ChunksRetrieved int    `json:"chunks_retrieved"`
	InputTokens     int    `json:"input_tokens"`
	OutputTokens    int    `json:"output_tokens"`
}
