package files

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, issuer *auth.Issuer, deps Dependencies) {
	filesGroup := router.Group("/files")
	filesGroup.Use(auth.AuthMiddleware(issuer))
	{
		filesGroup.POST("/upload", UploadHandler(deps))
		filesGroup.GET("", ListFilesHandler(deps.Files))
		filesGroup.DELETE("/:id", DeleteFileHandler(deps.Files, deps.Archive))
	}
}
