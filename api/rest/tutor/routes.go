package tutor

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, issuer *auth.Issuer, deps Dependencies) {
	group := router.Group("/tutor")
	group.Use(auth.AuthMiddleware(issuer))
	{
		group.POST("/ask", AskHandler(deps))
	}
}
