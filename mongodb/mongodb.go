package mongodb

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zhixing-admin/pkg/config"
)

var (
	client   *mongo.Client
	initOnce sync.Once
)

// InitMongoDB 初始化 MongoDB 连接（API请求日志存储）
//
// 未配置 URI 时跳过，请求日志中间件会降级为仅文件日志。
func InitMongoDB() {
	cfg := config.GetConfig()
	if cfg.MongoDB.URI == "" {
		log.Print("MongoDB URI 未配置，跳过请求日志存储初始化")
		return
	}

	initOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
		if err != nil {
			log.Printf("Failed to connect to MongoDB: %v", err)
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			log.Printf("Failed to ping MongoDB: %v", err)
			return
		}
		client = c
		log.Printf("MongoDB连接已初始化: %s/%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	})
}

// IsAvailable MongoDB 是否可用
func IsAvailable() bool {
	return client != nil
}

// RequestLogCollection 请求日志集合
func RequestLogCollection() *mongo.Collection {
	if client == nil {
		return nil
	}
	cfg := config.GetConfig()
	return client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
}

// Close 关闭 MongoDB 连接
func Close() {
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Failed to disconnect MongoDB: %v", err)
		}
	}
}
