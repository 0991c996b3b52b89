package equipment

import (
	"equipment-lending-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleEquipment) InitRouter(r *gin.RouterGroup) {
	equipmentGroup := r.Group("/equipment")

	equipmentGroup.Use(middleware.Auth(0))
	{
		equipmentGroup.GET("", SearchEquipment)
		equipmentGroup.GET("/available", AvailableEquipment)
		equipmentGroup.GET("/check-serial", CheckSerial)
		equipmentGroup.GET("/category/:categoryId", EquipmentByCategory)
		equipmentGroup.GET("/:id", GetEquipment)
	}

	equipmentGroup.Use(middleware.Auth(1))
	{
		equipmentGroup.POST("", CreateEquipment)
		equipmentGroup.PUT("/:id", UpdateEquipment)
		equipmentGroup.PUT("/:id/status", UpdateEquipmentStatus)
		equipmentGroup.DELETE("/:id", DeleteEquipment)
		equipmentGroup.POST("/bulk-delete", BulkDeleteEquipment)
		equipmentGroup.GET("/low-stock", LowStockEquipment)

		equipmentGroup.GET("/export", ExportEquipment)
		equipmentGroup.POST("/import", ImportEquipment)
		equipmentGroup.GET("/import/template", ImportTemplate)
	}
}
