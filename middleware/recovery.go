package middleware

import (
	"log"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"zhixing-admin/pkg/response"
)

// RequestID 为每个请求生成唯一标识
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// Recovery panic恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v\n%s", err, debug.Stack())
				response.Abort(c, response.INTERNAL_ERROR)
			}
		}()
		c.Next()
	}
}

// ErrorHandler 兜底处理 handler 挂到 gin 的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			log.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, c.Errors.Last())
			response.Error(c, response.INTERNAL_ERROR)
		}
	}
}
