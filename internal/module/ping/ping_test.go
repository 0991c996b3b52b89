package ping

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/redis"
	"equipment-lending-system/test"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	database.DB = test.NewDB(t)
	redis.RedisClient = nil

	resp := test.DoRequest(t, Health, test.Request{Method: http.MethodGet})
	test.NoError(t, resp)
	require.Equal(t, "down", test.DecodeData[map[string]string](t, resp)["redis"])

	mr := miniredis.RunT(t)
	redis.RedisClient = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redis.RedisClient.Close() })

	resp = test.DoRequest(t, Health, test.Request{Method: http.MethodGet})
	test.NoError(t, resp)
	data := test.DecodeData[map[string]string](t, resp)
	require.Equal(t, "up", data["database"])
	require.Equal(t, "up", data["redis"])
}
