package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"zhixing-admin/pkg/jwt"
	"zhixing-admin/pkg/response"
	"zhixing-admin/redis"
)

// JWTAuth 管理员令牌校验
//
// 令牌必须能通过签名校验，且仍存在于 Redis（登出即失效）。
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Abort(c, response.AUTH_ERROR, "缺少认证令牌")
			return
		}

		claims, err := jwt.ParseAdminToken(token)
		if err != nil {
			response.Abort(c, response.AUTH_ERROR, err.Error())
			return
		}

		if redis.IsConnected() {
			stored, err := redis.GetClient().Get(c.Request.Context(),
				"admin_token:"+strconv.Itoa(claims.UID)).Result()
			if err != nil || stored != token {
				response.Abort(c, response.AUTH_ERROR, "令牌已失效")
				return
			}
		}

		c.Set("uid", claims.UID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
