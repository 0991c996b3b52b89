package response

import "net/http"

var (
	ErrInvalidRequest  = newError(http.StatusBadRequest, 40000, "请求参数错误")
	ErrInvalidPassword = newError(http.StatusBadRequest, 40001, "用户名或密码错误")
	ErrTokenInvalid    = newError(http.StatusUnauthorized, 40100, "登录已失效，请重新登录")
	ErrUnauthorized    = newError(http.StatusUnauthorized, 40101, "未登录")
	ErrForbidden       = newError(http.StatusForbidden, 40300, "没有权限执行此操作")
	ErrUserDisabled    = newError(http.StatusForbidden, 40301, "账户已被禁用")
	ErrNotFound        = newError(http.StatusNotFound, 40400, "资源不存在")
	ErrConflict        = newError(http.StatusConflict, 40900, "操作冲突")
	ErrAlreadyExists   = newError(http.StatusConflict, 40901, "资源已存在")
	ErrServerInternal  = newError(http.StatusInternalServerError, 50000, "服务器内部错误")
	ErrDatabase        = newError(http.StatusInternalServerError, 50001, "数据库错误")
	ErrStorage         = newError(http.StatusInternalServerError, 50002, "文件存储失败")
	ErrUpstream        = newError(http.StatusBadGateway, 50200, "外部服务调用失败")
)

const CodeSuccess int32 = 200
