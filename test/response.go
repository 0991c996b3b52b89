package test

import (
	"encoding/json"
	"testing"

	"equipment-lending-system/internal/global/response"

	"github.com/stretchr/testify/require"
)

func ErrorEqual(t *testing.T, expected *response.Error, resp response.ResponseBody) {
	t.Helper()
	require.Equal(t, expected.Code, resp.Code, resp.Msg)
}

func NoError(t *testing.T, resp response.ResponseBody) {
	t.Helper()
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Msg)
}

// DecodeData 把响应中的 data 转成具体类型
func DecodeData[T any](t *testing.T, resp response.ResponseBody) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
