package tracing

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSanitizeURL(t *testing.T) {
	require.Equal(t, "https://api.example.com/v1/chat", sanitizeURL("https://api.example.com/v1/chat?key=secret"))
	require.Equal(t, "unknown", sanitizeURL(""))
}

func TestPipelineDescription(t *testing.T) {
	ctx := context.Background()
	cmds := []redis.Cmder{
		redis.NewStringCmd(ctx, "get", "a"),
		redis.NewStatusCmd(ctx, "set", "a", "1"),
		redis.NewIntCmd(ctx, "rpush", "l", "x"),
		redis.NewStatusCmd(ctx, "ltrim", "l", 0, 1),
	}
	require.Equal(t, "PIPELINE (empty)", pipelineDescription(nil))
	require.Equal(t, "PIPELINE: GET, SET, RPUSH...", pipelineDescription(cmds))
}

func TestTraceWithoutParent(t *testing.T) {
	ctx := context.Background()
	next, finish := Trace(ctx, "equipment.import", "导入")
	require.Equal(t, ctx, next)
	finish()
}
