package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const (
	analysisPrefix = "analysis:"
	DefaultTTL     = time.Hour
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return NewFromClient(client, ttl), nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(client *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{client: client, ttl: ttl}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) SetAnalysis(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	if err := c.client.Set(ctx, analysisPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set analysis cache: %w", err)
	}

	logger.Debug("Analysis cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *Client) GetAnalysis(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, analysisPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get analysis cache: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	logger.Debug("Analysis cache hit", zap.String("key", key))
	return true, nil
}

// InvalidateAnalyses drops every cached analysis. Called after a corpus
// reload; keys already embed the corpus version, so this only frees memory.
func (c *Client) InvalidateAnalyses(ctx context.Context) (int, error) {
	deleted := 0
	iter := c.client.Scan(ctx, 0, analysisPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		deleted++
	}

	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Analysis cache invalidated", zap.Int("deleted", deleted))
	return deleted, nil
}
