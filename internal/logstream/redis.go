package logstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvin/snapback/internal/model"
)

// RedisStream stores each channel as a Redis stream, trimmed to
// MaxChannelLength with approximate trimming.
type RedisStream struct {
	client *redis.Client
}

// NewRedisStream connects a stream transport to Redis.
func NewRedisStream(addr, password string) *RedisStream {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisStream{client: client}
}

// Ping verifies the Redis connection.
func (s *RedisStream) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *RedisStream) Close() error {
	return s.client.Close()
}

func (s *RedisStream) Append(ctx context.Context, channel string, e model.LogEntry) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: channel,
		MaxLen: MaxChannelLength,
		Approx: true,
		Values: map[string]any{
			"level":     e.Level,
			"message":   e.Message,
			"requestId": e.RequestID,
			"source":    e.Source,
			"timestamp": e.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append to channel %s: %w", channel, err)
	}
	return nil
}

func (s *RedisStream) Read(ctx context.Context, channel string, cur Cursor, block time.Duration) ([]model.LogEntry, Cursor, error) {
	res, err := s.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{channel, string(cur)},
		Block:   block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Block timeout, nothing new.
			return nil, cur, nil
		}
		return nil, cur, fmt.Errorf("read channel %s: %w", channel, err)
	}

	var entries []model.LogEntry
	next := cur
	for _, stream := range res {
		for _, msg := range stream.Messages {
			entries = append(entries, decodeEntry(channel, msg.Values))
			next = Cursor(msg.ID)
		}
	}
	return entries, next, nil
}

// decodeEntry maps the flat stream fields back onto the structured record.
func decodeEntry(channel string, values map[string]any) model.LogEntry {
	e := model.LogEntry{Channel: channel}
	if v, ok := values["level"].(string); ok {
		e.Level = v
	}
	if v, ok := values["message"].(string); ok {
		e.Message = v
	}
	if v, ok := values["requestId"].(string); ok {
		e.RequestID = v
	}
	if v, ok := values["source"].(string); ok {
		e.Source = v
	}
	if v, ok := values["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Timestamp = ts
		}
	}
	return e
}
