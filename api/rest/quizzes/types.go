package quizzes

import (
	"context"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/studyai"
	"codeberg.org/studyhall/server/studyhall/files"
	"codeberg.org/studyhall/server/studyhall/quizzes"
)

type FileGetter interface {
	Get(ctx context.Context, fileID, userID string) (*files.File, error)
}

type QuizStore interface {
	CreateBatch(ctx context.Context, fileID string, items []studyai.QuizItem) ([]quizzes.Quiz, error)
	ListByFile(ctx context.Context, fileID string) ([]quizzes.Quiz, error)
}

type Generator interface {
	GenerateQuiz(ctx context.Context, text string) ([]studyai.QuizItem, error)
}

type Dependencies struct {
	Files     FileGetter
	Quizzes   QuizStore
	Generator Generator
	Meter     *metering.Meter
}

type GenerateRequest struct {
	FileID string `json:"file_id" binding:"required,uuid"`
}

type GenerateResponse struct {
	Message string         `json:"message"`
	Quiz    []quizzes.Quiz `json:"quiz"`
	Usage   quota.Decision `json:"usage"`
}

type ListResponse struct {
	Quiz []quizzes.Quiz `json:"quiz"`
}
