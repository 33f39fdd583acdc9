package admin_service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"zhixing-admin/db"
	"zhixing-admin/inout"
	"zhixing-admin/model/admin_model"
	"zhixing-admin/utils"
)

// OrderService 订单服务
//
// 状态变更一律经过状态机，变更成功后把结果交给统计引擎做
// 增量维护。
type OrderService struct {
	machine *OrderStatusMachine
	stats   *StatsService
	sales   *SalesService
}

func NewOrderService() *OrderService {
	return &OrderService{
		machine: NewOrderStatusMachine(),
		stats:   NewStatsService(),
		sales:   &SalesService{},
	}
}

// CreateOrder 创建订单，初始状态为待付款确认
//
// 销售编码必须在创建时就能解析，错误编码的订单一旦进入计佣
// 状态只能靠告警兜底，不如直接拒绝。
func (s *OrderService) CreateOrder(params inout.CreateOrderReq) (*admin_model.SalesOrder, error) {
	if !isKnownDuration(params.Duration) {
		return nil, fmt.Errorf("不支持的购买时长: %s", params.Duration)
	}
	if params.PaymentMethod != admin_model.PaymentMethodAlipay &&
		params.PaymentMethod != admin_model.PaymentMethodCrypto {
		return nil, fmt.Errorf("不支持的支付方式: %s", params.PaymentMethod)
	}

	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("订单金额格式错误 %q: %w", params.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("订单金额必须为正: %s", amount)
	}

	if _, err := s.sales.ResolveAgent(params.SalesCode); err != nil {
		return nil, err
	}

	now := time.Now()
	order := admin_model.SalesOrder{
		OrderNo:             utils.GenerateOrderNo(),
		CustomerName:        params.CustomerName,
		TradingviewUsername: params.TradingviewUsername,
		Duration:            params.Duration,
		Amount:              amount.Round(2),
		PaymentMethod:       params.PaymentMethod,
		Status:              admin_model.OrderStatusPendingPayment,
		SalesCode:           params.SalesCode,
		CreateTime:          now,
		UpdateTime:          now,
	}
	if err := db.Dao.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	return &order, nil
}

// TransitionOrder 执行订单状态变更并增量维护统计
//
// 统计维护失败不回滚状态变更，订单状态是事实；统计服务会把
// 涉及的销售标记为未对账，由全量重算补齐。未知销售编码只告警，
// 不阻断状态流转。
func (s *OrderService) TransitionOrder(orderID int, params inout.OrderTransitionReq, operator string) (*admin_model.SalesOrder, error) {
	var (
		res *TransitionResult
		err error
	)
	if params.Force {
		res, err = s.machine.ForceTransition(orderID, params.Status, operator, params.Reason)
	} else {
		res, err = s.machine.Transition(orderID, params.Status, operator, params.Reason)
	}
	if err != nil {
		return nil, err
	}

	if res.Changed {
		if err := s.stats.HandleTransition(res); err != nil {
			if errors.Is(err, ErrUnknownAgent) {
				log.Printf("订单 %s 状态已变更但统计被跳过: %v", res.Order.OrderNo, err)
			} else {
				log.Printf("订单 %s 统计增量维护失败，需全量重算补齐: %v", res.Order.OrderNo, err)
			}
		}
	}
	return res.Order, nil
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(params inout.OrderListReq) (map[string]interface{}, error) {
	params.Page = max(params.Page, 1)
	params.PageSize = max(params.PageSize, 10)

	query := db.Dao.Model(&admin_model.SalesOrder{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.SalesCode != "" {
		query = query.Where("sales_code = ?", params.SalesCode)
	}
	if params.Start != "" {
		start, err := utils.ParseDate(params.Start)
		if err != nil {
			return nil, fmt.Errorf("开始日期格式错误 %q: %w", params.Start, err)
		}
		query = query.Where("create_time >= ?", start)
	}
	if params.End != "" {
		end, err := utils.ParseDate(params.End)
		if err != nil {
			return nil, fmt.Errorf("结束日期格式错误 %q: %w", params.End, err)
		}
		query = query.Where("create_time < ?", end.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("统计订单数量失败: %w", err)
	}

	var orders []admin_model.SalesOrder
	err := query.Order("create_time DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}

	items := make([]inout.OrderItem, 0, len(orders))
	for i := range orders {
		items = append(items, formatOrderItem(&orders[i]))
	}

	return map[string]interface{}{
		"total":    total,
		"items":    items,
		"page":     params.Page,
		"pageSize": params.PageSize,
	}, nil
}

// GetOrderDetail 订单详情，附带当前允许的目标状态
func (s *OrderService) GetOrderDetail(orderID int) (map[string]interface{}, error) {
	var order admin_model.SalesOrder
	if err := db.Dao.Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"order":               formatOrderItem(&order),
		"allowed_transitions": s.machine.AllowedTransitions(order.Status),
	}, nil
}

// GetOrderHistory 订单状态变更历史
func (s *OrderService) GetOrderHistory(orderID int) ([]inout.OrderHistoryItem, error) {
	var records []admin_model.OrderStatusHistory
	err := db.Dao.Where("order_id = ?", orderID).
		Order("create_time ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询状态变更历史失败: %w", err)
	}

	items := make([]inout.OrderHistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, inout.OrderHistoryItem{
			FromStatus: record.FromStatus,
			ToStatus:   record.ToStatus,
			Operator:   record.Operator,
			Override:   record.Override == 1,
			Reason:     record.Reason,
			CreateTime: utils.FormatTime(record.CreateTime),
		})
	}
	return items, nil
}

func formatOrderItem(order *admin_model.SalesOrder) inout.OrderItem {
	return inout.OrderItem{
		Id:                  order.Id,
		OrderNo:             order.OrderNo,
		CustomerName:        order.CustomerName,
		TradingviewUsername: order.TradingviewUsername,
		Duration:            order.Duration,
		Amount:              order.Amount.StringFixed(2),
		PaymentMethod:       order.PaymentMethod,
		Status:              order.Status,
		SalesCode:           order.SalesCode,
		CreateTime:          utils.FormatTime(order.CreateTime),
		PaymentTime:         utils.FormatTimePtr(order.PaymentTime),
		ConfigTime:          utils.FormatTimePtr(order.ConfigTime),
		ExpiryTime:          utils.FormatTimePtr(order.ExpiryTime),
	}
}

func isKnownDuration(duration string) bool {
	switch duration {
	case admin_model.DurationTrial,
		admin_model.Duration1Month,
		admin_model.Duration3Months,
		admin_model.Duration6Months,
		admin_model.Duration1Year,
		admin_model.DurationLifetime:
		return true
	}
	return false
}
