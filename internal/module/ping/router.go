package ping

import (
	"context"
	"time"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/redis"
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, map[string]any{
			"message": "pong",
			"version": version,
		})
	})
	r.GET("/health", Health)
}

// Health 检查数据库和 redis 是否可用，redis 不可用只影响聊天历史
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	result := map[string]any{"version": version, "database": "up", "redis": "up"}
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Error("数据库不可用", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if redis.RedisClient == nil || redis.RedisClient.Ping(ctx).Err() != nil {
		log.Warn("redis 不可用")
		result["redis"] = "down"
	}
	response.Success(c, result)
}
