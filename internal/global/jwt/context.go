package jwt

import (
	"github.com/gin-gonic/gin"
)

// GetUserPayload 取出 Auth 中间件写入的身份信息
func GetUserPayload(c *gin.Context) (userPayload *Claims, exist bool) {
	payload, _ := c.Get("payload")
	userPayload, exist = payload.(*Claims)
	return
}
