package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Request 描述一次 handler 调用，Claims 为空时表示未登录
type Request struct {
	Method string
	Path   string
	Params gin.Params
	Body   any
	Claims *jwt.Claims
}

// DoRequest 直接调用 handler 并解析统一响应体
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, req Request) (resp response.ResponseBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		require.NoError(t, err)
	}
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	path := req.Path
	if path == "" {
		path = "/test"
	}
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = req.Params
	if req.Claims != nil {
		c.Set("payload", req.Claims)
	}

	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// Admin 管理员身份
func Admin(id uint) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: id, Username: "admin", Roles: []string{"ROLE_ADMIN"}, RoleID: 1}}
}

// User 普通用户身份
func User(id uint) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: id, Username: "user", Roles: []string{"ROLE_USER"}, RoleID: 0}}
}
