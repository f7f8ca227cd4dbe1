package files

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFileNotFound = errors.New("file not found")

type Repository struct {
	db *pgxpool.Pool
}

// an uploaded document and its extracted text
type File struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	TextContent string    `json:"-"`
	ObjectKey   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateFileRequest struct {
	ID          string
	UserID      string
	Filename    string
	ContentType string
	SizeBytes   int64
	TextContent string
	ObjectKey   string
}
