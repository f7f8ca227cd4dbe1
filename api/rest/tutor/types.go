package tutor

import (
	"context"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/studyai"
	"codeberg.org/studyhall/server/studyhall/files"
)

type FileGetter interface {
	Get(ctx context.Context, fileID, userID string) (*files.File, error)
}

type Answerer interface {
	AnswerQuestion(ctx context.Context, fileID, question string) (*studyai.TutorAnswer, error)
}

type Dependencies struct {
	Files     FileGetter
	Assistant Answerer
	Meter     *metering.Meter
}

type AskRequest struct {
	FileID   string `json:"file_id" binding:"required,uuid"`
	Question string `json:"question" binding:"required,max=2000"`
}

type AskResponse struct {
	Answer          string         `json:"answer"`
	ChunksRetrieved int            `json:"chunks_retrieved"`
	Usage           quota.Decision `json:"usage"`
}
