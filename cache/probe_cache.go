package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	probeDurationKey = "probe:duration:%s" // String: 对象路径 -> 探测出的时长（秒）
	probeTTL         = 24 * time.Hour
)

// ProbeCache 素材时长探测结果缓存，避免同一对象重复跑 ffprobe
type ProbeCache struct {
	client *redis.Client
}

// NewProbeCache 创建探测缓存
func NewProbeCache() *ProbeCache {
	return &ProbeCache{client: RedisClient}
}

// GetDuration 读取缓存的时长。第二个返回值表示是否命中。
func (c *ProbeCache) GetDuration(ctx context.Context, objectPath string) (float64, bool, error) {
	if c.client == nil {
		return 0, false, fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(probeDurationKey, objectPath)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	duration, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// 缓存里存了坏数据，当作未命中并清掉
		c.client.Del(ctx, key)
		return 0, false, nil
	}
	return duration, true, nil
}

// SetDuration 写入探测结果并刷新过期时间
func (c *ProbeCache) SetDuration(ctx context.Context, objectPath string, duration float64) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(probeDurationKey, objectPath)
	return c.client.Set(ctx, key, strconv.FormatFloat(duration, 'f', -1, 64), probeTTL).Err()
}
