package inout

// StatsQueryReq 统计查询请求
//
// Period 为 day/month/total，Date 为对应的桶标识
// （day: 2006-01-02，month: 2006-01，total 可省略）。
// SalesCode 为空时返回全部销售的汇总。
type StatsQueryReq struct {
	SalesCode string `form:"sales_code"`
	Period    string `form:"period" binding:"required"`
	Date      string `form:"date"`
}

// SalesStatsItem 单个销售在某个时间桶内的统计
//
// CommissionPending 为派生值 owed - paid，可能为负，负值表示
// 对账异常，原样返回不做截断。
type SalesStatsItem struct {
	SalesCode         string `json:"sales_code"`
	Period            string `json:"period"`
	BucketKey         string `json:"bucket_key"`
	OrdersCount       int64  `json:"orders_count"`
	GrossAmount       string `json:"gross_amount"`
	CommissionOwed    string `json:"commission_owed"`
	CommissionPaid    string `json:"commission_paid"`
	CommissionPending string `json:"commission_pending"`
	Stale             bool   `json:"stale"`
}

// StatsSummaryResp 统计汇总响应
type StatsSummaryResp struct {
	Period            string           `json:"period"`
	BucketKey         string           `json:"bucket_key"`
	OrdersCount       int64            `json:"orders_count"`
	GrossAmount       string           `json:"gross_amount"`
	CommissionOwed    string           `json:"commission_owed"`
	CommissionPaid    string           `json:"commission_paid"`
	CommissionPending string           `json:"commission_pending"`
	HasStale          bool             `json:"has_stale"`
	Items             []SalesStatsItem `json:"items"`
}

// RecomputeFailedItem 全量重算失败的销售
type RecomputeFailedItem struct {
	SalesCode string `json:"sales_code"`
	Error     string `json:"error"`
}

// RecomputeResp 全量重算结果
type RecomputeResp struct {
	TotalAgents int                   `json:"total_agents"`
	Succeeded   int                   `json:"succeeded"`
	Failed      []RecomputeFailedItem `json:"failed"`
	Warnings    []string              `json:"warnings"`
	ElapsedMs   int64                 `json:"elapsed_ms"`
}
