package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"zhixing-admin/config"
)

var (
	rdb         *redis.Client
	initOnce    sync.Once
	initialized bool
	initErr     error
	ErrNil      = errors.New("redis: nil")
)

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg config.RedisConfig) error {
	initOnce.Do(func() {
		log.Printf("Initializing Redis client with address: %s, DB: %d", cfg.Addr, cfg.DB)

		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
			log.Printf("ERROR: %v", initErr)
			return
		}

		initialized = true
		log.Printf("Successfully connected to Redis at %s, DB: %d", cfg.Addr, cfg.DB)
	})

	return initErr
}

// GetClient 获取 Redis 客户端实例
func GetClient() *redis.Client {
	if !initialized && initErr == nil {
		cfg := config.RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}

		log.Print("Redis client not initialized, attempting with default configuration")
		if err := InitRedis(cfg); err != nil {
			log.Printf("ERROR: Failed to initialize Redis with default config: %v", err)
		}
	}

	if rdb == nil {
		log.Print("WARNING: Redis client is nil, some features may not work")
	}

	return rdb
}

// IsConnected 检查 Redis 是否已连接
func IsConnected() bool {
	if rdb == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return rdb.Ping(ctx).Err() == nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis() error {
	if rdb != nil {
		log.Print("Closing Redis connection")
		return rdb.Close()
	}
	return nil
}

// AcquireLock 获取分布式锁，返回锁标识
//
// 同一销售的统计快照更新必须串行，调用方持有返回的标识并在
// 完成后调用 ReleaseLock。获取失败返回 acquired=false。
func AcquireLock(ctx context.Context, key string, expiration time.Duration) (string, bool, error) {
	client := GetClient()
	if client == nil {
		return "", false, errors.New("redis client not available")
	}

	identifier := uuid.New().String()
	acquired, err := client.SetNX(ctx, key, identifier, expiration).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return identifier, acquired, nil
}

// releaseScript 只释放自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseLock 释放分布式锁，仅当标识匹配时删除
func ReleaseLock(ctx context.Context, key, identifier string) {
	client := GetClient()
	if client == nil {
		return
	}

	if err := releaseScript.Run(ctx, client, []string{key}, identifier).Err(); err != nil && err != redis.Nil {
		log.Printf("释放锁 %s 失败: %v", key, err)
	}
}

// StoreToken 保存管理员登录令牌
func StoreToken(userID string, token string, expiration time.Duration) error {
	key := "admin_token:" + userID
	ctx := context.Background()
	if err := GetClient().Set(ctx, key, token, expiration).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// DeleteToken 删除管理员登录令牌
func DeleteToken(userID string) error {
	key := "admin_token:" + userID
	ctx := context.Background()
	if err := GetClient().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
