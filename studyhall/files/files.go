package files

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, req CreateFileRequest) (*File, error) {
	return scanFile(r.db.QueryRow(
		ctx,
		queryCreate,
		req.ID,
		req.UserID,
		req.Filename,
		req.ContentType,
		req.SizeBytes,
		req.TextContent,
		req.ObjectKey,
	))
}

// Get returns the file only when userID owns it
func (r *Repository) Get(ctx context.Context, fileID, userID string) (*File, error) {
	file, err := scanFile(r.db.QueryRow(ctx, queryGet, fileID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *Repository) List(ctx context.Context, userID string, limit, offset int) ([]File, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountByUser, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, queryList, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()
	files := []File{}

	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}

		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return files, total, nil
}

// Delete removes an owned file and returns its archive key, empty when it was never archived
func (r *Repository) Delete(ctx context.Context, fileID, userID string) (string, error) {
	var objectKey string

	err := r.db.QueryRow(ctx, queryDelete, fileID, userID).Scan(&objectKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrFileNotFound
	}

	if err != nil {
		return "", err
	}

	return objectKey, nil
}

func scanFile(row pgx.Row) (*File, error) {
	var f File

	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Filename,
		&f.ContentType,
		&f.SizeBytes,
		&f.TextContent,
		&f.ObjectKey,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &f, nil
}
