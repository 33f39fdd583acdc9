package inout

// CreatePrimarySalesReq 创建一级销售请求
type CreatePrimarySalesReq struct {
	SalesCode      string `json:"sales_code"`
	WechatName     string `json:"wechat_name" binding:"required"`
	CommissionRate string `json:"commission_rate" binding:"required"`
	PaymentAddress string `json:"payment_address"`
}

// CreateSecondarySalesReq 创建二级销售请求
//
// PrimarySalesCode 为空时创建独立二级销售。
type CreateSecondarySalesReq struct {
	SalesCode        string `json:"sales_code"`
	WechatName       string `json:"wechat_name" binding:"required"`
	CommissionRate   string `json:"commission_rate" binding:"required"`
	PrimarySalesCode string `json:"primary_sales_code"`
	PaymentAddress   string `json:"payment_address"`
}

// UpdateSalesReq 更新销售请求，空指针字段不变更
type UpdateSalesReq struct {
	WechatName       *string `json:"wechat_name"`
	CommissionRate   *string `json:"commission_rate"`
	PrimarySalesCode *string `json:"primary_sales_code"`
	PaymentAddress   *string `json:"payment_address"`
}

// SalesListReq 销售列表请求
type SalesListReq struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Kind     string `form:"kind"`
	Search   string `form:"search"`
}

// SalesItem 销售响应项
type SalesItem struct {
	Id               int    `json:"id"`
	Kind             string `json:"kind"`
	SalesCode        string `json:"sales_code"`
	WechatName       string `json:"wechat_name"`
	CommissionRate   string `json:"commission_rate"`
	PrimarySalesCode string `json:"primary_sales_code,omitempty"`
	PaymentAddress   string `json:"payment_address,omitempty"`
	CreateTime       string `json:"create_time"`
}

// RecordPayoutReq 录入返佣打款请求
type RecordPayoutReq struct {
	Amount  string `json:"amount" binding:"required"`
	PayTime string `json:"pay_time"`
	Remark  string `json:"remark"`
}
