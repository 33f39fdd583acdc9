package admin_model

import "time"

// AdminUser 后台管理员
type AdminUser struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"column:username;size:64;uniqueIndex"`
	PasswordBcrypt string    `json:"-" gorm:"column:password_bcrypt"`
	CreateTime     time.Time `json:"create_time" gorm:"column:create_time"`
	UpdateTime     time.Time `json:"update_time" gorm:"column:update_time"`
}

func (AdminUser) TableName() string {
	return "admin_user"
}
