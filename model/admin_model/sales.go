package admin_model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 销售类型
const (
	SalesKindPrimary   = "primary"
	SalesKindSecondary = "secondary"
)

// PrimarySales 一级销售
//
// SalesCode 是唯一且不可变的销售编码，所有关联（订单、统计、
// 下级销售）都通过编码解析，微信名只作展示。
type PrimarySales struct {
	Id             int             `json:"id" gorm:"primaryKey;autoIncrement"`
	SalesCode      string          `json:"sales_code" gorm:"column:sales_code;size:32;uniqueIndex"`
	WechatName     string          `json:"wechat_name" gorm:"column:wechat_name"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"column:commission_rate;type:decimal(5,4)"`
	PaymentAddress string          `json:"payment_address" gorm:"column:payment_address"`
	CreateTime     time.Time       `json:"create_time" gorm:"column:create_time"`
	UpdateTime     time.Time       `json:"update_time" gorm:"column:update_time"`
}

func (PrimarySales) TableName() string {
	return "primary_sales"
}

// SecondarySales 二级销售
//
// PrimarySalesCode 为空表示独立销售（不挂靠任何一级）。
type SecondarySales struct {
	Id               int             `json:"id" gorm:"primaryKey;autoIncrement"`
	SalesCode        string          `json:"sales_code" gorm:"column:sales_code;size:32;uniqueIndex"`
	WechatName       string          `json:"wechat_name" gorm:"column:wechat_name"`
	CommissionRate   decimal.Decimal `json:"commission_rate" gorm:"column:commission_rate;type:decimal(5,4)"`
	PrimarySalesCode *string         `json:"primary_sales_code" gorm:"column:primary_sales_code;size:32;index"`
	PaymentAddress   string          `json:"payment_address" gorm:"column:payment_address"`
	CreateTime       time.Time       `json:"create_time" gorm:"column:create_time"`
	UpdateTime       time.Time       `json:"update_time" gorm:"column:update_time"`
}

func (SecondarySales) TableName() string {
	return "secondary_sales"
}

// ParentRef 二级销售挂靠的一级销售信息
type ParentRef struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// SalesAgent 按编码解析后的销售统一视图
//
// Kind 为 primary 时 Parent 恒为 nil；Kind 为 secondary 且
// Parent 为 nil 表示独立二级销售。
type SalesAgent struct {
	Kind           string          `json:"kind"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Parent         *ParentRef      `json:"parent,omitempty"`
}

// IsIndependent 是否为独立二级销售
func (a *SalesAgent) IsIndependent() bool {
	return a.Kind == SalesKindSecondary && a.Parent == nil
}
