package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// redisBackend stores each session as a marker key plus a list of JSON items.
type redisBackend struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore connects to Redis and returns a store backed by it.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "agentevals:"
	}
	return newStore(&redisBackend{
		client:    client,
		keyPrefix: keyPrefix + "session:",
		ttl:       cfg.TTL,
	}), nil
}

func (r *redisBackend) metaKey(id string) string {
	return r.keyPrefix + id + ":meta"
}

func (r *redisBackend) itemsKey(id string) string {
	return r.keyPrefix + id + ":items"
}

func (r *redisBackend) create(ctx context.Context, id string) error {
	return r.client.Set(ctx, r.metaKey(id), time.Now().UTC().Format(time.RFC3339Nano), r.ttl).Err()
}

func (r *redisBackend) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.metaKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisBackend) load(ctx context.Context, id string) ([]Item, error) {
	raw, err := r.client.LRange(ctx, r.itemsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		var item Item
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *redisBackend) append(ctx context.Context, id string, items []Item) error {
	values := make([]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		values = append(values, data)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, r.itemsKey(id), values...)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.itemsKey(id), r.ttl)
		pipe.Expire(ctx, r.metaKey(id), r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisBackend) close() error {
	return r.client.Close()
}
