package borrow

import (
	"equipment-lending-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleBorrow) InitRouter(r *gin.RouterGroup) {
	borrowGroup := r.Group("/borrow")

	borrowGroup.Use(middleware.Auth(0))
	{
		borrowGroup.POST("", CreateBorrow)
		borrowGroup.POST("/apply", CreateBorrow)
		borrowGroup.GET("/my", MyBorrows)
		borrowGroup.GET("/my/stats", MyStatistics)
		borrowGroup.GET("/active", MyActiveBorrows)
		borrowGroup.GET("/active/:equipmentId", EquipmentActiveBorrows)
		borrowGroup.GET("/:id", GetBorrow)
		// 借用人本人或管理员
		borrowGroup.PUT("/:id/return", ReturnBorrow)
	}

	borrowGroup.Use(middleware.Auth(1))
	{
		borrowGroup.GET("", ListBorrows)
		borrowGroup.GET("/pending", PendingBorrows)
		borrowGroup.GET("/overdue", OverdueBorrows)
		borrowGroup.GET("/expiring", ExpiringBorrows)
		borrowGroup.PUT("/:id/approve", ApproveBorrow)
		borrowGroup.PUT("/:id/reject", RejectBorrow)
		borrowGroup.PUT("/batch-approve", BatchApprove)
		borrowGroup.PUT("/batch-reject", BatchReject)
		borrowGroup.PUT("/:id/send-reminder", SendReminder)
		borrowGroup.PUT("/batch-send-reminders", BatchSendReminders)
		borrowGroup.DELETE("/:id", DeleteBorrow)
	}
}
