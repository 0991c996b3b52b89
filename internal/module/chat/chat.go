package chat

import (
	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type sendRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type sendResponse struct {
	Message string `json:"message"`
}

// SendMessage 上游失败时返回提示语而不是错误，且不写入历史
func SendMessage(c *gin.Context) {
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	ctx := c.Request.Context()
	log.Info("用户发送消息", "user_id", claims.UserID, "length", len([]rune(req.Message)))

	history, err := store.Load(ctx, claims.UserID)
	if err != nil {
		log.Warn("读取对话历史失败", "user_id", claims.UserID, "error", err)
	}

	reply, err := proxy.Complete(ctx, history, req.Message)
	if err != nil {
		log.Error("调用 AI 服务失败", "user_id", claims.UserID, "error", err)
		response.Success(c, sendResponse{Message: CannedReply(err)})
		return
	}

	if err := store.Append(ctx, claims.UserID,
		Message{Role: RoleUser, Content: req.Message},
		Message{Role: RoleAssistant, Content: reply},
	); err != nil {
		log.Warn("保存对话历史失败", "user_id", claims.UserID, "error", err)
	}
	response.Success(c, sendResponse{Message: reply})
}

func ClearHistory(c *gin.Context) {
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	if err := store.Clear(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	response.Success(c)
}
