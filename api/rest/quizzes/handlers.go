package quizzes

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/studyhall/files"
)

// GenerateHandler godoc
// @Summary Generate a quiz
// @Description Generates multiple choice and short answer questions from an uploaded file. Counts against the daily quiz quota.
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "file to generate from"
// @Success 201 {object} GenerateResponse
// @Failure 402 {object} errors.QuotaExceededResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/quizzes/generate [post]
// @Security BearerAuth
func GenerateHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		decision, ok := deps.Meter.Consume(c, userID, quota.CapabilityQuizzes)
		if !ok {
			return
		}

		ctx := c.Request.Context()

		file, err := deps.Files.Get(ctx, req.FileID, userID)
		if err != nil {
			if stderrors.Is(err, files.ErrFileNotFound) {
				errors.NotFound(c, "file")
				return
			}

			errors.InternalError(c, "failed to load file", err)
			return
		}

		if file.TextContent == "" {
			errors.NotFound(c, "file text")
			return
		}

		items, err := deps.Generator.GenerateQuiz(ctx, file.TextContent)
		if err != nil {
			if stderrors.Is(err, llm.ErrProviderStatus) {
				errors.ServiceUnavailable(c, "quiz generation is temporarily unavailable", err)
				return
			}

			errors.InternalError(c, "failed to generate quiz", err)
			return
		}

		saved, err := deps.Quizzes.CreateBatch(ctx, file.ID, items)
		if err != nil {
			errors.InternalError(c, "failed to save quiz", err)
			return
		}

		c.JSON(http.StatusCreated, GenerateResponse{
			Message: fmt.Sprintf("generated %d quiz questions", len(saved)),
			Quiz:    saved,
			Usage:   decision,
		})
	}
}

// ListHandler godoc
// @Summary List quiz questions for a file
// @Tags quizzes
// @Produce json
// @Param file_id path string true "file id"
// @Success 200 {object} ListResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/quizzes/{file_id} [get]
// @Security BearerAuth
func ListHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		fileID, ok := errors.ValidatePathUUID(c, "file_id")
		if !ok {
			return
		}

		// ownership check
		if _, err := deps.Files.Get(c.Request.Context(), fileID, userID); err != nil {
			if stderrors.Is(err, files.ErrFileNotFound) {
				errors.NotFound(c, "file")
				return
			}

			errors.InternalError(c, "failed to load file", err)
			return
		}

		quiz, err := deps.Quizzes.ListByFile(c.Request.Context(), fileID)
		if err != nil {
			errors.InternalError(c, "failed to list quiz questions", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{Quiz: quiz})
	}
}
