package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ClipForge/model"

	"github.com/go-redis/redis/v8"
)

const (
	sessionMembersKey  = "studio:%s:members"     // Hash: clientID -> MemberOnline JSON
	sessionPresenceKey = "studio:%s:presence:%d" // String: 客户端心跳 key (sessionID:clientID)
	sessionOnlineSet   = "studio:%s:online"      // Set: 在线客户端集合
	sessionTTL         = 24 * time.Hour
	presenceTTL        = 60 * time.Second // 心跳过期时间 60秒
)

// SessionCache 会话在线状态缓存
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache 创建会话缓存
func NewSessionCache() *SessionCache {
	return &SessionCache{client: RedisClient}
}

// SetMemberOnline 记录成员上线
func (c *SessionCache) SetMemberOnline(ctx context.Context, sessionID string, member *model.MemberOnline) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(sessionMembersKey, sessionID)
	data, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fmt.Sprintf("%d", member.ClientID), data)
	pipe.Expire(ctx, key, sessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RemoveMemberOnline 移除成员在线记录
func (c *SessionCache) RemoveMemberOnline(ctx context.Context, sessionID string, clientID int64) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(sessionMembersKey, sessionID)
	return c.client.HDel(ctx, key, fmt.Sprintf("%d", clientID)).Err()
}

// GetMembersOnline 获取会话内所有在线成员
func (c *SessionCache) GetMembersOnline(ctx context.Context, sessionID string) ([]model.MemberOnline, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(sessionMembersKey, sessionID)
	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	members := make([]model.MemberOnline, 0, len(result))
	for _, data := range result {
		var member model.MemberOnline
		if err := json.Unmarshal([]byte(data), &member); err == nil {
			members = append(members, member)
		}
	}
	return members, nil
}

// UpdateClientPresence 刷新客户端心跳
func (c *SessionCache) UpdateClientPresence(ctx context.Context, sessionID string, clientID int64) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	presenceKey := fmt.Sprintf(sessionPresenceKey, sessionID, clientID)
	onlineSetKey := fmt.Sprintf(sessionOnlineSet, sessionID)

	pipe := c.client.Pipeline()
	pipe.Set(ctx, presenceKey, time.Now().UnixMilli(), presenceTTL)
	pipe.SAdd(ctx, onlineSetKey, clientID)
	pipe.Expire(ctx, onlineSetKey, sessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveClientPresence 移除客户端心跳
func (c *SessionCache) RemoveClientPresence(ctx context.Context, sessionID string, clientID int64) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	presenceKey := fmt.Sprintf(sessionPresenceKey, sessionID, clientID)
	onlineSetKey := fmt.Sprintf(sessionOnlineSet, sessionID)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, presenceKey)
	pipe.SRem(ctx, onlineSetKey, clientID)
	_, err := pipe.Exec(ctx)
	return err
}

// GetActiveOnlineCount 基于心跳统计活跃人数，顺带清理过期成员
func (c *SessionCache) GetActiveOnlineCount(ctx context.Context, sessionID string) (int64, error) {
	if c.client == nil {
		return 0, fmt.Errorf("Redis client not initialized")
	}

	onlineSetKey := fmt.Sprintf(sessionOnlineSet, sessionID)
	members, err := c.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	activeCount := int64(0)
	expired := make([]interface{}, 0)
	for _, memberStr := range members {
		clientID, err := strconv.ParseInt(memberStr, 10, 64)
		if err != nil {
			continue
		}
		presenceKey := fmt.Sprintf(sessionPresenceKey, sessionID, clientID)
		exists, err := c.client.Exists(ctx, presenceKey).Result()
		if err != nil {
			continue
		}
		if exists > 0 {
			activeCount++
		} else {
			expired = append(expired, memberStr)
		}
	}

	if len(expired) > 0 {
		c.client.SRem(ctx, onlineSetKey, expired...)
	}

	return activeCount, nil
}

// ClearSession 清理会话的全部缓存
func (c *SessionCache) ClearSession(ctx context.Context, sessionID string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	keys := []string{
		fmt.Sprintf(sessionMembersKey, sessionID),
		fmt.Sprintf(sessionOnlineSet, sessionID),
	}
	return c.client.Del(ctx, keys...).Err()
}
