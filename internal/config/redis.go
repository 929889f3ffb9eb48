package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the shared client for the unread-count cache. Nil when REDIS_ADDR
// is unset or the server is unreachable; callers fall back to SQL.
var Redis *redis.Client

func ConnectRedis(env Env) *redis.Client {
	if env.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: env.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, running without cache: %v", env.RedisAddr, err)
		_ = client.Close()
		return nil
	}

	Redis = client
	log.Println("connected to redis at", env.RedisAddr)
	return Redis
}

func CloseRedis() {
	if Redis != nil {
		_ = Redis.Close()
		Redis = nil
	}
}
