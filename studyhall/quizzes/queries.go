package quizzes

const (
	queryInsert = `
		INSERT INTO quizzes (file_id, question_type, difficulty, question, options, correct_answer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, file_id::text, question_type, difficulty, question, options, correct_answer, created_at
	`

	queryListByFile = `
		SELECT id::text, file_id::text, question_type, difficulty, question, options, correct_answer, created_at
		FROM quizzes
		WHERE file_id = $1
		ORDER BY created_at ASC, id ASC
	`
)
