package user

import (
	"net/http"
	"strings"

	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
)

// maxAvatarSize 头像最大 5MB
const maxAvatarSize = 5 << 20

func currentUser(c *gin.Context) (*jwt.Claims, bool) {
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
	}
	return claims, ok
}

func pathID(c *gin.Context) (uint, bool) {
	id, ok := tools.ParamUint(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("无效的用户ID"))
	}
	return id, ok
}

func GetProfile(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := svc.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}

func UpdateProfile(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定更新资料请求失败", "error", err, "user_id", claims.UserID)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	u, err := svc.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("用户资料已更新", "user_id", claims.UserID)
	response.Success(c, u)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required,min=6,max=40"`
}

func ChangePassword(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.Password); err != nil {
		log.Warn("修改密码失败", "user_id", claims.UserID, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("用户修改密码成功", "user_id", claims.UserID)
	response.Success(c)
}

// UploadAvatar multipart 字段 file，只接受图片
func UploadAvatar(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("请选择要上传的头像"))
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.Fail(c, response.ErrInvalidRequest.WithTips("头像不能超过 5MB"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	defer file.Close()

	// 按文件内容判断类型
	head := make([]byte, 512)
	n, _ := file.Read(head)
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		response.Fail(c, response.ErrInvalidRequest.WithTips("只能上传图片文件"))
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}

	u, err := svc.UploadAvatar(c.Request.Context(), claims.UserID, fileHeader.Filename, file, contentType)
	if err != nil {
		log.Error("上传头像失败", "user_id", claims.UserID, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("头像上传成功", "user_id", claims.UserID, "avatar", u.Avatar)
	response.Success(c, u)
}

// PresignAvatar 返回直传对象存储的地址，上传完成后再通过 PUT /user/profile 写回 avatar
func PresignAvatar(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件名不能为空"))
		return
	}
	result, err := svc.PresignAvatar(c.Request.Context(), filename, c.DefaultQuery("content_type", "image/jpeg"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, result)
}

func ListUsers(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	result, err := svc.List(c.Request.Context(), f, tools.GetPage(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	response.Success(c, result)
}

func GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, u)
}

func CreateUser(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建用户请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	u, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("管理员创建用户", "user_id", u.ID, "username", u.Username, "roles", u.RoleNames())
	response.Success(c, u)
}

func UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定更新用户请求失败", "error", err, "user_id", id)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	u, err := svc.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("管理员更新用户", "user_id", id)
	response.Success(c, u)
}

func DeleteUser(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id == claims.UserID {
		response.Fail(c, response.ErrInvalidRequest.WithTips("不能删除自己的账户"))
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("用户已删除", "user_id", id, "operator_id", claims.UserID)
	response.Success(c)
}

type statusRequest struct {
	Status *int `json:"status" binding:"required"`
}

// SetUserStatus 0 正常，1 禁用
func SetUserStatus(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("状态值不能为空"))
		return
	}
	if id == claims.UserID && *req.Status != 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("不能禁用自己的账户"))
		return
	}
	u, err := svc.SetStatus(c.Request.Context(), id, *req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("用户状态已修改", "user_id", id, "status", u.Status, "operator_id", claims.UserID)
	response.Success(c, u)
}

func ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := svc.ResetPassword(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("用户密码已重置", "user_id", id)
	response.Success(c)
}
