package api

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"zhixing-admin/db"
	"zhixing-admin/inout"
	"zhixing-admin/model/admin_model"
	"zhixing-admin/pkg/config"
	"zhixing-admin/pkg/jwt"
	"zhixing-admin/pkg/response"
	"zhixing-admin/pkg/security"
	"zhixing-admin/redis"
)

// Login 管理员登录
func Login(c *gin.Context) {
	var params inout.LoginReq
	if err := c.ShouldBind(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	var user admin_model.AdminUser
	err := db.Dao.Where("username = ?", params.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, response.AUTH_ERROR, "用户名或密码错误")
		return
	}
	if err != nil {
		log.Printf("查询管理员失败: %v", err)
		response.Error(c, response.INTERNAL_ERROR)
		return
	}

	if !security.CheckPasswordHash(params.Password, user.PasswordBcrypt) {
		response.Error(c, response.AUTH_ERROR, "用户名或密码错误")
		return
	}

	token, err := jwt.GenerateAdminToken(user.Id, user.Username)
	if err != nil {
		log.Printf("签发令牌失败: %v", err)
		response.Error(c, response.INTERNAL_ERROR)
		return
	}

	// 令牌同步写入 Redis，登出即失效
	expiry := config.GetConfig().JWT.Expiry
	if err := redis.StoreToken(strconv.Itoa(user.Id), token, expiry); err != nil {
		log.Printf("保存令牌失败: %v", err)
		response.Error(c, response.INTERNAL_ERROR)
		return
	}

	response.Success(c, inout.LoginResp{
		Token:    fmt.Sprintf("Bearer %s", token),
		Username: user.Username,
	})
}

// Logout 管理员登出，删除服务端令牌
func Logout(c *gin.Context) {
	uid := c.GetInt("uid")
	if uid == 0 {
		response.Error(c, response.AUTH_ERROR)
		return
	}

	if err := redis.DeleteToken(strconv.Itoa(uid)); err != nil {
		log.Printf("删除令牌失败: %v", err)
		response.Error(c, response.INTERNAL_ERROR)
		return
	}
	response.Success(c, nil)
}
