package chat

import (
	"log/slog"
	"time"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/httpclient"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/redis"
)

var (
	log   *slog.Logger
	proxy *Proxy
	store *History
)

type ModuleChat struct{}

func (m *ModuleChat) GetName() string {
	return "Chat"
}

func (m *ModuleChat) Init() {
	log = logger.New("Chat")
	cfg := config.Get().AI
	proxy = NewProxy(httpclient.Client, cfg)
	store = NewHistory(redis.RedisClient, cfg.HistorySize, time.Duration(cfg.HistoryTTL)*time.Second)
}
