package admin_service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"zhixing-admin/db"
	"zhixing-admin/model/admin_model"
	"zhixing-admin/pkg/monitoring"
)

// ErrInvalidTransition 非法的订单状态转换
var ErrInvalidTransition = errors.New("不允许的订单状态转换")

// OrderTransitionRule 订单状态转换规则
type OrderTransitionRule struct {
	From        string
	To          string
	Description string
}

// OrderStatusMachine 订单状态机
//
// 正常流转：pending_payment → confirmed_payment → pending_config
// → confirmed_config；rejected 只能从 pending_payment 或
// confirmed_payment 进入。confirmed_config 与 rejected 为终态。
type OrderStatusMachine struct {
	transitions map[string][]string
	rules       []OrderTransitionRule
}

// NewOrderStatusMachine 创建订单状态机
func NewOrderStatusMachine() *OrderStatusMachine {
	rules := []OrderTransitionRule{
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusConfirmedPayment, "确认收款"},
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusRejected, "付款前拒绝"},
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusPendingConfig, "进入开通流程"},
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusRejected, "收款后拒绝"},
		{admin_model.OrderStatusPendingConfig, admin_model.OrderStatusConfirmedConfig, "确认开通"},
	}

	machine := &OrderStatusMachine{
		transitions: make(map[string][]string),
		rules:       rules,
	}
	for _, rule := range rules {
		machine.transitions[rule.From] = append(machine.transitions[rule.From], rule.To)
	}
	return machine
}

// CanTransition 目标状态是否可由当前状态直接到达
func (m *OrderStatusMachine) CanTransition(from, to string) bool {
	for _, allowed := range m.transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition 验证状态转换是否合法
func (m *OrderStatusMachine) ValidateTransition(from, to string) error {
	if !m.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTransitions 当前状态允许的目标状态列表
func (m *OrderStatusMachine) AllowedTransitions(from string) []string {
	return append([]string(nil), m.transitions[from]...)
}

// TransitionResult 状态转换结果，供统计引擎增量维护使用
type TransitionResult struct {
	Order      *admin_model.SalesOrder
	FromStatus string
	ToStatus   string
	Changed    bool
}

// Transition 执行订单状态转换
//
// 订单不存在时返回 gorm.ErrRecordNotFound，非法转换返回
// ErrInvalidTransition。成功时持久化新状态并记录阶段时间戳：
// 进入 confirmed_payment 写 payment_time，进入 confirmed_config
// 写 config_time 并推算到期时间。
func (m *OrderStatusMachine) Transition(orderID int, target, operator, reason string) (*TransitionResult, error) {
	return m.transition(orderID, target, operator, reason, false)
}

// ForceTransition 管理员强制状态跳转
//
// 跳过转换规则校验，但拒绝离开终态，且变更历史会标记为强制。
func (m *OrderStatusMachine) ForceTransition(orderID int, target, operator, reason string) (*TransitionResult, error) {
	return m.transition(orderID, target, operator, reason, true)
}

func (m *OrderStatusMachine) transition(orderID int, target, operator, reason string, force bool) (*TransitionResult, error) {
	if !isKnownStatus(target) {
		return nil, fmt.Errorf("%w: 未知目标状态 %s", ErrInvalidTransition, target)
	}

	var result *TransitionResult
	err := db.Dao.Transaction(func(tx *gorm.DB) error {
		var order admin_model.SalesOrder
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", orderID).
			First(&order).Error; err != nil {
			return err
		}

		from := order.Status
		if from == target {
			result = &TransitionResult{Order: &order, FromStatus: from, ToStatus: target, Changed: false}
			return nil
		}

		if force {
			// 终态不可离开，强制跳转也不例外
			if from == admin_model.OrderStatusConfirmedConfig || from == admin_model.OrderStatusRejected {
				return fmt.Errorf("%w: %s 为终态", ErrInvalidTransition, from)
			}
			log.Printf("管理员 %s 强制跳转订单 %s: %s -> %s", operator, order.OrderNo, from, target)
		} else if err := m.ValidateTransition(from, target); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      target,
			"update_time": now,
		}
		switch target {
		case admin_model.OrderStatusConfirmedPayment:
			if order.PaymentTime == nil {
				updates["payment_time"] = now
				order.PaymentTime = &now
			}
		case admin_model.OrderStatusConfirmedConfig:
			if order.ConfigTime == nil {
				updates["config_time"] = now
				order.ConfigTime = &now
			}
			if expiry := expiryFromDuration(order.Duration, now); expiry != nil {
				updates["expiry_time"] = *expiry
				order.ExpiryTime = expiry
			}
		}

		if err := tx.Model(&admin_model.SalesOrder{}).
			Where("id = ?", order.Id).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}

		override := int8(0)
		if force && !m.CanTransition(from, target) {
			override = 1
		}
		history := admin_model.OrderStatusHistory{
			OrderId:    order.Id,
			OrderNo:    order.OrderNo,
			FromStatus: from,
			ToStatus:   target,
			Operator:   operator,
			Override:   override,
			Reason:     reason,
			CreateTime: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("记录状态变更历史失败: %w", err)
		}

		order.Status = target
		order.UpdateTime = now
		result = &TransitionResult{Order: &order, FromStatus: from, ToStatus: target, Changed: true}
		return nil
	})

	if err != nil {
		monitoring.RecordOrderTransition(statusLabel(err), target, "error")
		return nil, err
	}
	if result.Changed {
		monitoring.RecordOrderTransition(result.FromStatus, result.ToStatus, "ok")
	}
	return result, nil
}

func statusLabel(err error) string {
	if errors.Is(err, ErrInvalidTransition) {
		return "invalid"
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "not_found"
	}
	return "unknown"
}

func isKnownStatus(status string) bool {
	switch status {
	case admin_model.OrderStatusPendingPayment,
		admin_model.OrderStatusConfirmedPayment,
		admin_model.OrderStatusPendingConfig,
		admin_model.OrderStatusConfirmedConfig,
		admin_model.OrderStatusRejected:
		return true
	}
	return false
}

// expiryFromDuration 按购买时长推算到期时间，终身版无到期
func expiryFromDuration(duration string, from time.Time) *time.Time {
	var expiry time.Time
	switch duration {
	case admin_model.DurationTrial:
		expiry = from.AddDate(0, 0, 7)
	case admin_model.Duration1Month:
		expiry = from.AddDate(0, 1, 0)
	case admin_model.Duration3Months:
		expiry = from.AddDate(0, 3, 0)
	case admin_model.Duration6Months:
		expiry = from.AddDate(0, 6, 0)
	case admin_model.Duration1Year:
		expiry = from.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &expiry
}
