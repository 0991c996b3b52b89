package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newEngine(minRole int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/secure", Auth(minRole), func(c *gin.Context) {
		claims, _ := jwt.GetUserPayload(c)
		response.Success(c, claims.UserID)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path, token string) (*httptest.ResponseRecorder, response.ResponseBody) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body response.ResponseBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuth(t *testing.T) {
	config.Set(&config.Config{JWT: config.JWT{AccessSecret: "secret", AccessExpire: 60}})
	t.Cleanup(func() { config.Set(nil) })

	userToken, err := jwt.CreateToken(jwt.Payload{UserID: 2, RoleID: 0})
	require.NoError(t, err)
	adminToken, err := jwt.CreateToken(jwt.Payload{UserID: 1, RoleID: 1})
	require.NoError(t, err)

	w, body := do(newEngine(1), "/secure", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.ErrUnauthorized.Code, body.Code)

	w, body = do(newEngine(1), "/secure", "garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.ErrTokenInvalid.Code, body.Code)

	w, body = do(newEngine(1), "/secure", userToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, response.ErrForbidden.Code, body.Code)

	w, body = do(newEngine(1), "/secure", adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), body.Data)

	w, _ = do(newEngine(0), "/secure", userToken)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	w, body := do(newEngine(0), "/panic", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, response.ErrServerInternal.Code, body.Code)
}

func TestLoggerRecordsJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.GET("/ping", func(c *gin.Context) { response.Success(c, "pong") })

	w, _ := do(r, "/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, buf.String(), `"path":"/ping"`)
	require.Contains(t, buf.String(), "pong")
}
