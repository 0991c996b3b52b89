package user

import (
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求，/auth/login 和 /auth/signin 共用
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	result, err := svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("用户登录失败", "username", req.Username, "error", err)
		response.Fail(c, err)
		return
	}

	log.Info("用户登录成功", "user_id", result.ID, "username", result.Username, "roles", result.Roles)
	response.Success(c, result)
}

// Register 处理用户注册请求，/auth/register 和 /auth/signup 共用
func Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定注册请求失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	u, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		log.Warn("用户注册失败", "username", req.Username, "error", err)
		response.Fail(c, err)
		return
	}

	log.Info("用户注册成功", "user_id", u.ID, "username", u.Username)
	response.Success(c, u)
}
