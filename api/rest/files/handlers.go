package files

import (
	"context"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codeberg.org/studyhall/server/api/rest/pagination"
	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/chunker"
	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/extractor"
	"codeberg.org/studyhall/server/internal/logger"
	"codeberg.org/studyhall/server/internal/objectstore"
	"codeberg.org/studyhall/server/studyhall/files"
)

// UploadHandler godoc
// @Summary Upload a document
// @Description Accepts a PDF, DOCX or TXT file, extracts its text and indexes it for the tutor
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "document"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 415 {object} errors.ErrorResponse
// @Router /api/v1/files/upload [post]
// @Security BearerAuth
func UploadHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		if deps.MaxUploadBytes > 0 {
			if c.Request.ContentLength > deps.MaxUploadBytes {
				errors.PayloadTooLarge(c, "file exceeds the upload size limit")
				return
			}

			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, deps.MaxUploadBytes)
		}

		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				errors.PayloadTooLarge(c, "file exceeds the upload size limit")
				return
			}

			errors.BadRequest(c, "multipart field \"file\" is required", err)
			return
		}

		if !extractor.Supported(header.Filename) {
			errors.UnsupportedMediaType(c, "only .pdf, .docx and .txt files are supported")
			return
		}

		data, err := readUpload(header)
		if err != nil {
			errors.BadRequest(c, "failed to read upload", err)
			return
		}

		text, err := extractor.ExtractText(header.Filename, data)
		if err != nil {
			if stderrors.Is(err, extractor.ErrNoText) {
				errors.InternalError(c, "could not extract text from the file", err)
				return
			}

			errors.BadRequest(c, "could not read the document", err)
			return
		}

		ctx := c.Request.Context()
		fileID := uuid.NewString()
		contentType := header.Header.Get("Content-Type")

		objectKey := archiveUpload(ctx, deps.Archive, userID, fileID, header.Filename, data, contentType)

		file, err := deps.Files.Create(ctx, files.CreateFileRequest{
			ID:          fileID,
			UserID:      userID,
			Filename:    header.Filename,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
			TextContent: text,
			ObjectKey:   objectKey,
		})
		if err != nil {
			discardArchive(ctx, deps.Archive, objectKey)
			errors.InternalError(c, "failed to save file", err)
			return
		}

		chunks := chunker.ChunkText(text, chunker.DefaultOptions())

		if err := indexChunks(ctx, deps, file.ID, chunks); err != nil {
			// without chunks the tutor cannot use the file, so the upload is undone
			if _, delErr := deps.Files.Delete(ctx, file.ID, userID); delErr != nil {
				logger.FromContext(ctx).Warn("failed to remove file after indexing error",
					"file_id", file.ID,
					"error", delErr,
				)
			}

			discardArchive(ctx, deps.Archive, objectKey)
			errors.InternalError(c, "failed to index file", err)
			return
		}

		logger.FromContext(ctx).Info("file uploaded",
			"file_id", file.ID,
			"user_id", userID,
			"bytes", len(data),
			"chunks", len(chunks),
		)

		c.JSON(http.StatusCreated, UploadResponse{
			Message: "file uploaded and processed",
			FileID:  file.ID,
			Chunks:  len(chunks),
		})
	}
}

// ListFilesHandler godoc
// @Summary List files
// @Description Lists the caller's files, newest first
// @Tags files
// @Produce json
// @Param limit query int false "page size (default 20, max 100)"
// @Param offset query int false "offset"
// @Success 200 {object} FilesListResponse
// @Router /api/v1/files [get]
// @Security BearerAuth
func ListFilesHandler(fileStore FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		params := pagination.FromQuery(c, defaultListLimit, maxListLimit)

		list, total, err := fileStore.List(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list files", err)
			return
		}

		c.JSON(http.StatusOK, FilesListResponse{
			Files:      list,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// DeleteFileHandler godoc
// @Summary Delete a file
// @Description Removes a file with its chunks, flashcards and quizzes
// @Tags files
// @Param id path string true "file id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/files/{id} [delete]
// @Security BearerAuth
func DeleteFileHandler(fileStore FileStore, archive Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		fileID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		objectKey, err := fileStore.Delete(c.Request.Context(), fileID, userID)
		if err != nil {
			if stderrors.Is(err, files.ErrFileNotFound) {
				errors.NotFound(c, "file")
				return
			}

			errors.InternalError(c, "failed to delete file", err)
			return
		}

		discardArchive(c.Request.Context(), archive, objectKey)

		c.JSON(http.StatusOK, MessageResponse{Message: "file deleted"})
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck

	return io.ReadAll(f)
}

func indexChunks(ctx context.Context, deps Dependencies, fileID string, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := embedAll(ctx, deps.Embedder, chunker.Contents(chunks))
	if err != nil {
		return err
	}

	return deps.Chunks.InsertChunksBatch(ctx, fileID, chunks, embeddings)
}

// archives the raw upload and returns its key, empty when archiving is off or failed
func archiveUpload(ctx context.Context, archive Archive, userID, fileID, filename string, data []byte, contentType string) string {
	if archive == nil {
		return ""
	}

	key := objectstore.ObjectKey(userID, fileID, filename)

	if err := archive.Put(ctx, key, data, contentType); err != nil {
		logger.FromContext(ctx).Warn("failed to archive upload, continuing without it",
			"file_id", fileID,
			"error", err,
		)

		return ""
	}

	return key
}

func discardArchive(ctx context.Context, archive Archive, key string) {
	if archive == nil || key == "" {
		return
	}

	if err := archive.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("failed to delete archived upload", "key", key, "error", err)
	}
}
