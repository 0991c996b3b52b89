package user

import (
	"equipment-lending-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

// InitRouter 注册 /auth 和 /user 两组路由
func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", Login)
		authGroup.POST("/signin", Login)
		authGroup.POST("/register", Register)
		authGroup.POST("/signup", Register)
	}

	userGroup := r.Group("/user")
	adminGroup := r.Group("/user")

	userGroup.Use(middleware.Auth(0))
	{
		userGroup.GET("/profile", GetProfile)
		userGroup.PUT("/profile", UpdateProfile)
		userGroup.PUT("/password", ChangePassword)
		userGroup.POST("/avatar", UploadAvatar)
		userGroup.GET("/avatar/presign", PresignAvatar)
	}
	adminGroup.Use(middleware.Auth(1))
	{
		adminGroup.GET("", ListUsers)
		adminGroup.POST("", CreateUser)
		adminGroup.GET("/:id", GetUser)
		adminGroup.PUT("/:id", UpdateUser)
		adminGroup.DELETE("/:id", DeleteUser)
		adminGroup.PUT("/:id/status", SetUserStatus)
		adminGroup.PUT("/:id/password/reset", ResetPassword)
	}
}
