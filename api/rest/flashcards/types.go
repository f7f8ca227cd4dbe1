package flashcards

import (
	"context"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/studyai"
	"codeberg.org/studyhall/server/studyhall/files"
	"codeberg.org/studyhall/server/studyhall/flashcards"
)

type FileGetter interface {
	Get(ctx context.Context, fileID, userID string) (*files.File, error)
}

type CardStore interface {
	CreateBatch(ctx context.Context, fileID string, cards []studyai.Flashcard) ([]flashcards.Flashcard, error)
	ListByFile(ctx context.Context, fileID string) ([]flashcards.Flashcard, error)
}

type Generator interface {
	GenerateFlashcards(ctx context.Context, text string) ([]studyai.Flashcard, error)
}

type Dependencies struct {
	Files     FileGetter
	Cards     CardStore
	Generator Generator
	Meter     *metering.Meter
}

type GenerateRequest struct {
	FileID string `json:"file_id" binding:"required,uuid"`
}

type GenerateResponse struct {
	Message    string                 `json:"message"`
	Flashcards []flashcards.Flashcard `json:"flashcards"`
	Usage      quota.Decision         `json:"usage"`
}

type ListResponse struct {
	Flashcards []flashcards.Flashcard `json:"flashcards"`
}
