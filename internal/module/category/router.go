package category

import (
	"equipment-lending-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleCategory) InitRouter(r *gin.RouterGroup) {
	categoryGroup := r.Group("/category")
	adminGroup := r.Group("/category")

	categoryGroup.Use(middleware.Auth(0))
	{
		categoryGroup.GET("", ListCategories)
		categoryGroup.GET("/:id", GetCategory)
	}
	adminGroup.Use(middleware.Auth(1))
	{
		adminGroup.POST("", CreateCategory)
		adminGroup.PUT("/:id", UpdateCategory)
		adminGroup.DELETE("/:id", DeleteCategory)
	}
}
