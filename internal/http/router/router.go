package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inlineai.app/relay/internal/http/handler"
	"inlineai.app/relay/internal/service"
	"inlineai.app/relay/internal/service/blob"
)

type RouterConfig struct {
	// LocalBlobDir, when set, is served read-only under blob.LocalRoute so
	// screenshots uploaded to the local store resolve in issue bodies.
	LocalBlobDir string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	changeRequestHandler := handler.NewChangeRequestHandler(services.ChangeRequests())
	ChangeRequestRouter(router.Group("/change-requests"), changeRequestHandler)

	if cfg.LocalBlobDir != "" {
		router.StaticFS(blob.LocalRoute, gin.Dir(cfg.LocalBlobDir, false))
	}
}
