package router

import (
	"github.com/gin-gonic/gin"

	"inlineai.app/relay/internal/http/handler"
)

func ChangeRequestRouter(router *gin.RouterGroup, h *handler.ChangeRequestHandler) {
	router.POST("", h.Submit)
	router.GET("/health", h.Health)
}
