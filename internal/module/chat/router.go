package chat

import (
	"equipment-lending-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleChat) InitRouter(r *gin.RouterGroup) {
	chatGroup := r.Group("/chat")
	chatGroup.Use(middleware.Auth(0))
	{
		chatGroup.POST("/send", SendMessage)
		chatGroup.DELETE("/history", ClearHistory)
	}
}
