package stats

import (
	"equipment-lending-system/internal/global/middleware"
	"equipment-lending-system/internal/module/stats/borrow"
	"equipment-lending-system/internal/module/stats/equipment"

	"github.com/gin-gonic/gin"
)

func (*ModuleStats) InitRouter(r *gin.RouterGroup) {
	adminGroup := r.Group("/stats")
	adminGroup.Use(middleware.Auth(1))
	{
		equipmentGroup := adminGroup.Group("/equipment")
		{
			equipmentGroup.GET("/summary", equipment.Summary)
			equipmentGroup.GET("/category-distribution", equipment.CategoryDistribution)
			equipmentGroup.GET("/status-distribution", equipment.StatusDistribution)
		}
		borrowGroup := adminGroup.Group("/borrow")
		{
			borrowGroup.GET("/summary", borrow.Summary)
			borrowGroup.GET("/trends", borrow.Trends)
			borrowGroup.GET("/equipment-ranking", borrow.EquipmentRanking)
			borrowGroup.GET("/user-ranking", borrow.UserRanking)
			borrowGroup.GET("/ranking/export", borrow.RankingExport)
		}
	}
}
