package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis は go-redis を使うバックエンドです。
type Redis struct {
	client redis.Cmdable
	prefix string
}

// RedisOptions は NewRedisClient に渡す接続設定です。
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient は接続を確立して疎通確認を行います。
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redisに接続できませんでした (%s): %w", opts.Addr, err)
	}
	return client, nil
}

// NewRedis は既存のクライアントをバックエンドとして包みます。
// prefix はすべてのキーの前に付与されるのだ。
func NewRedis(client redis.Cmdable, prefix string) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
