// Package tracing 把 GORM、Redis 和出站 HTTP 调用挂到当前请求的 Sentry transaction 下
package tracing

import (
	"context"

	"equipment-lending-system/config"

	"github.com/getsentry/sentry-go"
)

// IsEnabled 是否配置了 Sentry
func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// Trace 在 ctx 当前的 span 下创建子 span，返回带新 span 的 ctx 和结束函数；没有父 span 时什么也不做
func Trace(ctx context.Context, operation, description string) (context.Context, func()) {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return ctx, func() {}
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span.Context(), span.Finish
}
