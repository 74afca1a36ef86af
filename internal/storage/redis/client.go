package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/pkg/logger"
)

// Client is a storage.Store backed by Redis strings. Every key is namespaced
// with the configured prefix so several deployments can share one server.
type Client struct {
	client *redis.Client
	prefix string
}

type Options struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// NewClient connects and pings the server once.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr), zap.String("prefix", opts.KeyPrefix))

	return &Client{client: client, prefix: opts.KeyPrefix}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, namespaced(c.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, true, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, namespaced(c.prefix, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	logger.Debug("Key stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
