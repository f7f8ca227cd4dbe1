package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/quota"
)

// postgres unique_violation
const uniqueViolation = "23505"

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// creates an account on the free plan. emails are stored lowercased.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, queryCreate, normalizeEmail(email), passwordHash, strings.TrimSpace(name)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	return user, nil
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return notFound(scanUser(r.db.QueryRow(ctx, queryFindByID, userID)))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return notFound(scanUser(r.db.QueryRow(ctx, queryFindByEmail, normalizeEmail(email))))
}

// Tier resolves the plan tier used for quota decisions
func (r *Repository) Tier(ctx context.Context, userID string) (quota.Tier, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return quota.ParseTier(user.Plan), nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Plan,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func notFound(user *User, err error) (*User, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
