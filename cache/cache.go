// Package cache provides an optional redis-backed cache for session
// message history. A nil *Cache is valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
)

const ttl = 24 * time.Hour

// Cache caches each session's message log as a redis list, one JSON-encoded
// message per element, in conversation order.
type Cache struct {
	rdb *redis.Client
}

// New connects to redis at addr. An empty addr returns nil, which disables
// caching; callers need no special handling for that case.
func New(ctx context.Context, addr, password string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

func messagesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// GetMessages returns the cached message log, or nil on miss or when the
// cache is disabled.
func (c *Cache) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal cached message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AppendMessage appends one message to the cached log, refreshing its TTL.
func (c *Cache) AppendMessage(ctx context.Context, msg domain.Message) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := messagesKey(msg.SessionID)
	pipe := c.rdb.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache message: %w", err)
	}
	return nil
}

// SetMessages replaces the cached log with the given messages.
func (c *Cache) SetMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	if c == nil {
		return nil
	}
	key := messagesKey(sessionID)
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key)
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache messages: %w", err)
	}
	return nil
}

// Invalidate drops the cached log for a session.
func (c *Cache) Invalidate(ctx context.Context, sessionID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, messagesKey(sessionID)).Err()
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
