package users

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", normalizeEmail("  Ada@Example.COM "))
}

func TestNotFound(t *testing.T) {
	_, err := notFound(nil, pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u := &User{ID: "1"}
	got, err := notFound(u, nil)
	assert.NoError(t, err)
	assert.Same(t, u, got)
}
