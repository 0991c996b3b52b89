package tracing

import (
	"context"
	"net"
	"strings"
	"time"

	"equipment-lending-system/config"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// RedisHook 实现 redis.Hook，追踪单条命令和 pipeline
type RedisHook struct {
	slowThreshold time.Duration
}

func NewRedisHook() *RedisHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		span, ctx := h.start(ctx, "db.redis", strings.ToUpper(cmd.Name()))
		start := time.Now()
		err := next(ctx, cmd)
		h.finish(span, start, err)
		return err
	}
}

func (h *RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		span, ctx := h.start(ctx, "db.redis.pipeline", pipelineDescription(cmds))
		if span != nil {
			span.SetData("redis.pipeline_length", len(cmds))
		}
		start := time.Now()
		err := next(ctx, cmds)
		h.finish(span, start, err)
		return err
	}
}

func (h *RedisHook) start(ctx context.Context, operation, description string) (*sentry.Span, context.Context) {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return nil, ctx
	}
	span := parent.StartChild(operation)
	span.Description = description
	span.SetData("db.system", "redis")
	return span, span.Context()
}

func (h *RedisHook) finish(span *sentry.Span, start time.Time, err error) {
	if span == nil {
		return
	}
	if h.slowThreshold > 0 && time.Since(start) < h.slowThreshold {
		span.Sampled = sentry.SampledFalse
	}
	if err != nil && err != redis.Nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("redis.error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}

// pipelineDescription 只列出前 3 条命令名
func pipelineDescription(cmds []redis.Cmder) string {
	if len(cmds) == 0 {
		return "PIPELINE (empty)"
	}
	names := make([]string, 0, 3)
	for i, cmd := range cmds {
		if i == 3 {
			break
		}
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	desc := "PIPELINE: " + strings.Join(names, ", ")
	if len(cmds) > 3 {
		desc += "..."
	}
	return desc
}
