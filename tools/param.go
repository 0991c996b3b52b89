package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamUint 读取路径参数中的正整数 ID
func ParamUint(c *gin.Context, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// QueryInt 读取查询参数中的整数，缺省或格式错误时返回 def
func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
