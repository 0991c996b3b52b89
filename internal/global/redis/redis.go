package redis

import (
	"context"
	"fmt"
	"time"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/sentry/tracing"
	"equipment-lending-system/tools"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func Init() {
	c := config.Get().Redis
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	})
	if tracing.IsEnabled() {
		client.AddHook(tracing.NewRedisHook())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tools.PanicOnErr(client.Ping(ctx).Err())
	RedisClient = client
}
