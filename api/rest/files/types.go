package files

import (
	"context"

	"codeberg.org/studyhall/server/api/rest/pagination"
	"codeberg.org/studyhall/server/internal/chunker"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/studyhall/files"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// texts per embeddings request and concurrent requests per upload
	embedBatchSize   = 64
	embedConcurrency = 4
)

type FileStore interface {
	Create(ctx context.Context, req files.CreateFileRequest) (*files.File, error)
	List(ctx context.Context, userID string, limit, offset int) ([]files.File, int, error)
	Delete(ctx context.Context, fileID, userID string) (string, error)
}

// stores embedded chunks for retrieval
type ChunkIndexer interface {
	InsertChunksBatch(ctx context.Context, fileID string, chunks []chunker.Chunk, embeddings [][]float32) error
}

// raw upload archive, optional
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

type Dependencies struct {
	Files          FileStore
	Chunks         ChunkIndexer
	Embedder       llm.Embedder
	Archive        Archive // nil disables archiving
	MaxUploadBytes int64
}

type UploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
	Chunks  int    `json:"chunks"`
}

// FilesListResponse wraps a list of files with pagination
type FilesListResponse struct {
	Files      []files.File    `json:"files"`
	Pagination pagination.Meta `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
