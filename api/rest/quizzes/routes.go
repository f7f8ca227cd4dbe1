package quizzes

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, issuer *auth.Issuer, deps Dependencies) {
	group := router.Group("/quizzes")
	group.Use(auth.AuthMiddleware(issuer))
	{
		group.POST("/generate", GenerateHandler(deps))
		group.GET("/:file_id", ListHandler(deps))
	}
}
