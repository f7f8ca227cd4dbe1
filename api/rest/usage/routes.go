package usage

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, issuer *auth.Issuer, deps Dependencies) {
	router.GET("/usage", auth.AuthMiddleware(issuer), GetUsageHandler(deps))
}
