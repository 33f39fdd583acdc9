package inout

// CreateOrderReq 创建订单请求
type CreateOrderReq struct {
	CustomerName        string `json:"customer_name" binding:"required"`
	TradingviewUsername string `json:"tradingview_username"`
	Duration            string `json:"duration" binding:"required"`
	Amount              string `json:"amount" binding:"required"`
	PaymentMethod       string `json:"payment_method" binding:"required"`
	SalesCode           string `json:"sales_code" binding:"required"`
}

// OrderTransitionReq 订单状态变更请求
type OrderTransitionReq struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Force  bool   `json:"force"` // 管理员强制跳转，会记录在变更历史
}

// OrderListReq 订单列表请求
type OrderListReq struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	Status    string `form:"status"`
	SalesCode string `form:"sales_code"`
	Start     string `form:"start"`
	End       string `form:"end"`
}

// OrderItem 订单响应项
type OrderItem struct {
	Id                  int    `json:"id"`
	OrderNo             string `json:"order_no"`
	CustomerName        string `json:"customer_name"`
	TradingviewUsername string `json:"tradingview_username"`
	Duration            string `json:"duration"`
	Amount              string `json:"amount"`
	PaymentMethod       string `json:"payment_method"`
	Status              string `json:"status"`
	SalesCode           string `json:"sales_code"`
	CreateTime          string `json:"create_time"`
	PaymentTime         string `json:"payment_time,omitempty"`
	ConfigTime          string `json:"config_time,omitempty"`
	ExpiryTime          string `json:"expiry_time,omitempty"`
}

// OrderHistoryItem 订单状态历史响应项
type OrderHistoryItem struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Operator   string `json:"operator"`
	Override   bool   `json:"override"`
	Reason     string `json:"reason"`
	CreateTime string `json:"create_time"`
}
