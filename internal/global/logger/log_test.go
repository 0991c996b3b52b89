package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"equipment-lending-system/config"

	"github.com/stretchr/testify/require"
)

func TestFanoutWritesToEveryEnabledHandler(t *testing.T) {
	var info, errs bytes.Buffer
	h := fanoutHandler{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	l := slog.New(h).With("module", "Test")

	l.Info("装备入库")
	l.Error("数据库错误")

	require.Contains(t, info.String(), "装备入库")
	require.Contains(t, info.String(), "数据库错误")
	require.NotContains(t, errs.String(), "装备入库")
	require.Contains(t, errs.String(), "module=Test")
	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewHandlerWithoutSentry(t *testing.T) {
	h := newHandler(&config.Config{Mode: config.ModeDebug, Log: config.Log{Level: "warn"}})
	require.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestGetLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	require.Equal(t, slog.LevelInfo, getLogLevel("unknown"))
	require.Equal(t, slog.LevelError, getLogLevel("error"))
}
