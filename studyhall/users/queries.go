package users

const (
	queryCreate = `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id::text, email, password_hash, name, plan, created_at, updated_at
	`

	queryFindByID = `
		SELECT id::text, email, password_hash, name, plan, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT id::text, email, password_hash, name, plan, created_at, updated_at
		FROM users
		WHERE email = $1
	`
)
