package files

const (
	queryCreate = `
		INSERT INTO files (id, user_id, filename, content_type, size_bytes, text_content, object_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, user_id::text, filename, content_type, size_bytes, text_content, object_key, created_at
	`

	queryGet = `
		SELECT id::text, user_id::text, filename, content_type, size_bytes, text_content, object_key, created_at
		FROM files
		WHERE id = $1 AND user_id = $2
	`

	queryCountByUser = `
		SELECT COUNT(*) FROM files WHERE user_id = $1
	`

	// list omits the extracted text
	queryList = `
		SELECT id::text, user_id::text, filename, content_type, size_bytes, '' AS text_content, object_key, created_at
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	// chunks, flashcards and quizzes go with the file through ON DELETE CASCADE
	queryDelete = `
		DELETE FROM files
		WHERE id = $1 AND user_id = $2
		RETURNING object_key
	`
)
