package response

import (
	"errors"
	"fmt"
	"net/http"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

type ResponseBody struct {
	Code   int32  `json:"code"`
	Msg    string `json:"msg"`
	Origin string `json:"origin,omitempty"`
	Data   any    `json:"data"`
}

// Success 返回成功响应，data 可省略
func Success(c *gin.Context, data ...any) {
	body := ResponseBody{Code: CodeSuccess, Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.JSON(http.StatusOK, body)
}

// Fail 返回失败响应，非 *Error 的错误统一视为服务器内部错误
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrServerInternal.WithOrigin(err)
	}
	c.Set(ErrorContextKey, e)
	if e.Status() >= http.StatusInternalServerError {
		sentry.CaptureException(c, e)
	}

	body := ResponseBody{Code: e.Code, Msg: e.Message}
	if config.Get().Mode == config.ModeDebug {
		body.Origin = e.Origin
	}
	c.AbortWithStatusJSON(e.Status(), body)
}

// Recovery 捕获 handler 中的 panic 并返回 500
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic: %v", r)
		logger.Get().Error("请求处理发生 panic", "error", err, "path", c.Request.URL.Path)
		Fail(c, ErrServerInternal.WithOrigin(err))
	}
}
