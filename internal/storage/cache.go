package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// getJSON 缓存未命中、反序列化失败或未启用 Redis 都返回 false
func getJSON(ctx context.Context, rdb *redis.Client, key string, dst any) bool {
	if rdb == nil {
		return false
	}
	bs, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, dst) == nil
}

// setJSON 写缓存失败只影响性能，忽略错误
func setJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = rdb.Set(ctx, key, bs, ttl).Err()
}
