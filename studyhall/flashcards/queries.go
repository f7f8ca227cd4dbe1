package flashcards

const (
	queryInsert = `
		INSERT INTO flashcards (file_id, question, answer)
		VALUES ($1, $2, $3)
		RETURNING id::text, file_id::text, question, answer, created_at
	`

	queryListByFile = `
		SELECT id::text, file_id::text, question, answer, created_at
		FROM flashcards
		WHERE file_id = $1
		ORDER BY created_at ASC, id ASC
	`
)
