package auth

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/studyhall/users"
)

// SignupHandler godoc
// @Summary Create an account
// @Description Registers a new account on the free plan
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/auth/signup [post]
func SignupHandler(userStore UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			if stderrors.Is(err, auth.ErrPasswordTooShort) {
				errors.BadRequest(c, err.Error(), nil)
				return
			}

			errors.InternalError(c, "failed to create account", err)
			return
		}

		user, err := userStore.Create(c.Request.Context(), req.Email, hash, req.Name)
		if err != nil {
			if stderrors.Is(err, users.ErrEmailTaken) {
				errors.Conflict(c, "email already registered")
				return
			}

			errors.InternalError(c, "failed to create account", err)
			return
		}

		c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

// LoginHandler godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/login [post]
func LoginHandler(userStore UserStore, issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userStore.FindByEmail(c.Request.Context(), req.Email)
		if err != nil {
			if stderrors.Is(err, users.ErrUserNotFound) {
				errors.Unauthorized(c, "incorrect email or password")
				return
			}

			errors.InternalError(c, "failed to log in", err)
			return
		}

		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			if stderrors.Is(err, auth.ErrInvalidCredentials) {
				errors.Unauthorized(c, "incorrect email or password")
				return
			}

			errors.InternalError(c, "failed to log in", err)
			return
		}

		token, err := issuer.GenerateJWT(user.ID, user.Email)
		if err != nil {
			errors.InternalError(c, "failed to issue token", err)
			return
		}

		c.JSON(http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   issuer.ExpiresIn(),
		})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(userStore UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := userStore.FindByID(c.Request.Context(), userID)
		if err != nil {
			if stderrors.Is(err, users.ErrUserNotFound) {
				errors.Unauthorized(c, "account not found")
				return
			}

			errors.InternalError(c, "failed to load user", err)
			return
		}

		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
