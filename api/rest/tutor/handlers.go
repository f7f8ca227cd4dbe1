package tutor

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/logger"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/studyhall/files"
)

// AskHandler godoc
// @Summary Ask the tutor
// @Description Answers a question using only the notes from one uploaded file. Counts against the daily tutor quota, including when the notes have nothing relevant.
// @Tags tutor
// @Accept json
// @Produce json
// @Param request body AskRequest true "file and question"
// @Success 200 {object} AskResponse
// @Failure 402 {object} errors.QuotaExceededResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/tutor/ask [post]
// @Security BearerAuth
func AskHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		question := strings.TrimSpace(req.Question)
		if question == "" {
			errors.BadRequest(c, "question cannot be empty", nil)
			return
		}

		decision, ok := deps.Meter.Consume(c, userID, quota.CapabilityTutorQnA)
		if !ok {
			return
		}

		ctx := c.Request.Context()

		if _, err := deps.Files.Get(ctx, req.FileID, userID); err != nil {
			if stderrors.Is(err, files.ErrFileNotFound) {
				errors.NotFound(c, "file")
				return
			}

			errors.InternalError(c, "failed to load file", err)
			return
		}

		answer, err := deps.Assistant.AnswerQuestion(ctx, req.FileID, question)
		if err != nil {
			if stderrors.Is(err, llm.ErrProviderStatus) {
				errors.ServiceUnavailable(c, "the tutor is temporarily unavailable", err)
				return
			}

			errors.InternalError(c, "failed to answer question", err)
			return
		}

		logger.FromContext(ctx).Info("tutor answered",
			"file_id", req.FileID,
			"chunks", answer.ChunksRetrieved,
			"input_tokens", answer.InputTokens,
			"output_tokens", answer.OutputTokens,
		)

		c.JSON(http.StatusOK, AskResponse{
			Answer:          answer.Answer,
			ChunksRetrieved: answer.ChunksRetrieved,
			Usage:           decision,
		})
	}
}
