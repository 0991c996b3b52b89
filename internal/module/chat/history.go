package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// History 每个用户一个 Redis 列表，只保留最近 size 条
type History struct {
	rdb  *redis.Client
	size int
	ttl  time.Duration
}

func NewHistory(rdb *redis.Client, size int, ttl time.Duration) *History {
	if size <= 0 {
		size = 10
	}
	return &History{rdb: rdb, size: size, ttl: ttl}
}

func historyKey(userID uint) string { return fmt.Sprintf("chat:history:%d", userID) }

func (h *History) Load(ctx context.Context, userID uint) ([]Message, error) {
	raw, err := h.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Append 追加后裁剪到 size 条并刷新过期时间
func (h *History) Append(ctx context.Context, userID uint, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]any, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	key := historyKey(userID)
	pipe := h.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-h.size), -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (h *History) Clear(ctx context.Context, userID uint) error {
	return h.rdb.Del(ctx, historyKey(userID)).Err()
}
