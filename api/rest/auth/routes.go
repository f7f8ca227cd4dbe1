package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, userStore UserStore, issuer *auth.Issuer) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", SignupHandler(userStore))
		authGroup.POST("/login", LoginHandler(userStore, issuer))
		authGroup.GET("/me", auth.AuthMiddleware(issuer), GetCurrentUserHandler(userStore))
	}
}
