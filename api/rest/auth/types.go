package auth

import (
	"context"

	"codeberg.org/studyhall/server/studyhall/users"
)

// account persistence used by the auth handlers
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Plan:  u.Plan,
	}
}
