package admin_model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 统计周期
const (
	StatsPeriodDay   = "day"
	StatsPeriodMonth = "month"
	StatsPeriodTotal = "total"

	// 全量周期的桶标识固定为 total
	StatsBucketTotal = "total"
)

// SalesStats 销售统计快照
//
// 按 (sales_code, period, bucket_key) 唯一，period 为 day 时
// bucket_key 是日期（2006-01-02），month 时是月份（2006-01），
// total 时固定为 total。待返佣金额不落库，读取时由
// commission_owed - commission_paid 推导。
type SalesStats struct {
	Id             int             `json:"id" gorm:"primaryKey;autoIncrement"`
	SalesCode      string          `json:"sales_code" gorm:"column:sales_code;size:32;uniqueIndex:uk_sales_bucket"`
	Period         string          `json:"period" gorm:"column:period;size:8;uniqueIndex:uk_sales_bucket"`
	BucketKey      string          `json:"bucket_key" gorm:"column:bucket_key;size:16;uniqueIndex:uk_sales_bucket"`
	OrdersCount    int64           `json:"orders_count" gorm:"column:orders_count"`
	GrossAmount    decimal.Decimal `json:"gross_amount" gorm:"column:gross_amount;type:decimal(12,2)"`
	CommissionOwed decimal.Decimal `json:"commission_owed" gorm:"column:commission_owed;type:decimal(12,2)"`
	CommissionPaid decimal.Decimal `json:"commission_paid" gorm:"column:commission_paid;type:decimal(12,2)"`
	Stale          int8            `json:"stale" gorm:"column:stale"` // 1=重算失败，数据未对账
	CreateTime     time.Time       `json:"create_time" gorm:"column:create_time"`
	UpdateTime     time.Time       `json:"update_time" gorm:"column:update_time"`
}

func (SalesStats) TableName() string {
	return "sales_stats"
}

// SalesPayout 返佣打款记录
//
// 由管理员人工录入，是已返佣金额的唯一来源，订单状态不代表
// 佣金已打款。
type SalesPayout struct {
	Id         int             `json:"id" gorm:"primaryKey;autoIncrement"`
	SalesCode  string          `json:"sales_code" gorm:"column:sales_code;size:32;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(12,2)"`
	PayTime    time.Time       `json:"pay_time" gorm:"column:pay_time"`
	Remark     string          `json:"remark" gorm:"column:remark"`
	CreateTime time.Time       `json:"create_time" gorm:"column:create_time"`
}

func (SalesPayout) TableName() string {
	return "sales_payout"
}
