package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"zhixing-admin/mongodb"
)

// RequestLog API请求审计日志，异步写入 MongoDB
//
// MongoDB 不可用时静默跳过，审计日志不阻断业务请求。
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mongodb.IsAvailable() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		doc := bson.M{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"username":   c.GetString("username"),
			"time":       start,
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			collection := mongodb.RequestLogCollection()
			if collection == nil {
				return
			}
			if _, err := collection.InsertOne(ctx, doc); err != nil {
				log.Printf("写入请求审计日志失败: %v", err)
			}
		}()
	}
}
