package admin_model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderStatusPendingPayment   = "pending_payment"   // 待付款确认
	OrderStatusConfirmedPayment = "confirmed_payment" // 已确认收款
	OrderStatusPendingConfig    = "pending_config"    // 待开通配置
	OrderStatusConfirmedConfig  = "confirmed_config"  // 已开通（终态）
	OrderStatusRejected         = "rejected"          // 已拒绝（终态）
)

// 购买时长
const (
	DurationTrial    = "trial"
	Duration1Month   = "1month"
	Duration3Months  = "3months"
	Duration6Months  = "6months"
	Duration1Year    = "1year"
	DurationLifetime = "lifetime"
)

// 支付方式，alipay 为人民币计价，crypto 为美元计价
const (
	PaymentMethodAlipay = "alipay"
	PaymentMethodCrypto = "crypto"
)

// SalesOrder 销售订单
//
// SalesCode 在订单创建时写入，离开 pending_payment 后不再变更。
// 订单不做物理删除，拒绝是终态状态而不是删除。
type SalesOrder struct {
	Id                  int             `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNo             string          `json:"order_no" gorm:"column:order_no;size:32;uniqueIndex"`
	CustomerName        string          `json:"customer_name" gorm:"column:customer_name"`
	TradingviewUsername string          `json:"tradingview_username" gorm:"column:tradingview_username"`
	Duration            string          `json:"duration" gorm:"column:duration;size:16"`
	Amount              decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(12,2)"`
	PaymentMethod       string          `json:"payment_method" gorm:"column:payment_method;size:16"`
	Status              string          `json:"status" gorm:"column:status;size:24;index"`
	SalesCode           string          `json:"sales_code" gorm:"column:sales_code;size:32;index"`
	CreateTime          time.Time       `json:"create_time" gorm:"column:create_time"`
	PaymentTime         *time.Time      `json:"payment_time" gorm:"column:payment_time"`
	ConfigTime          *time.Time      `json:"config_time" gorm:"column:config_time"`
	ExpiryTime          *time.Time      `json:"expiry_time" gorm:"column:expiry_time"`
	UpdateTime          time.Time       `json:"update_time" gorm:"column:update_time"`
}

func (SalesOrder) TableName() string {
	return "sales_order"
}

// OrderStatusHistory 订单状态变更历史
type OrderStatusHistory struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderId    int       `json:"order_id" gorm:"column:order_id;index"`
	OrderNo    string    `json:"order_no" gorm:"column:order_no;size:32;index"`
	FromStatus string    `json:"from_status" gorm:"column:from_status;size:24"`
	ToStatus   string    `json:"to_status" gorm:"column:to_status;size:24"`
	Operator   string    `json:"operator" gorm:"column:operator"`
	Override   int8      `json:"override" gorm:"column:override"` // 1=管理员强制跳转
	Reason     string    `json:"reason" gorm:"column:reason"`
	CreateTime time.Time `json:"create_time" gorm:"column:create_time"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
