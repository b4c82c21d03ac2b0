package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chatly/chatweb/internal/session"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository stores session tokens as expiring Redis strings.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionRepository creates a repository writing keys under
// "userToken:<hash>".
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: session.TokenKey + ":"}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RedisSessionRepository) Load(ctx context.Context, key string) (string, error) {
	token, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", session.ErrNotFound
		}
		return "", err
	}
	return token, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, token, ttl).Err()
}

func (r *RedisSessionRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
