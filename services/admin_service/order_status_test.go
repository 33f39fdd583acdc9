package admin_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"zhixing-admin/model/admin_model"
)

func TestOrderStatusMachineLegalTransitions(t *testing.T) {
	machine := NewOrderStatusMachine()

	legal := [][2]string{
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusConfirmedPayment},
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusRejected},
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusPendingConfig},
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusRejected},
		{admin_model.OrderStatusPendingConfig, admin_model.OrderStatusConfirmedConfig},
	}
	for _, pair := range legal {
		assert.True(t, machine.CanTransition(pair[0], pair[1]), "%s -> %s 应当合法", pair[0], pair[1])
		assert.NoError(t, machine.ValidateTransition(pair[0], pair[1]))
	}
}

func TestOrderStatusMachineIllegalTransitions(t *testing.T) {
	machine := NewOrderStatusMachine()

	illegal := [][2]string{
		// 跳级
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusPendingConfig},
		{admin_model.OrderStatusPendingPayment, admin_model.OrderStatusConfirmedConfig},
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusConfirmedConfig},
		// 回退
		{admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusPendingPayment},
		{admin_model.OrderStatusPendingConfig, admin_model.OrderStatusConfirmedPayment},
		// 开通阶段不可拒绝
		{admin_model.OrderStatusPendingConfig, admin_model.OrderStatusRejected},
	}
	for _, pair := range illegal {
		assert.False(t, machine.CanTransition(pair[0], pair[1]), "%s -> %s 应当非法", pair[0], pair[1])
		err := machine.ValidateTransition(pair[0], pair[1])
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestOrderStatusMachineTerminalStates(t *testing.T) {
	machine := NewOrderStatusMachine()

	for _, terminal := range []string{
		admin_model.OrderStatusConfirmedConfig,
		admin_model.OrderStatusRejected,
	} {
		assert.Empty(t, machine.AllowedTransitions(terminal), "终态 %s 不应有出边", terminal)
	}
}

func TestOrderStatusMachineAllowedTransitions(t *testing.T) {
	machine := NewOrderStatusMachine()

	allowed := machine.AllowedTransitions(admin_model.OrderStatusConfirmedPayment)
	assert.ElementsMatch(t, []string{
		admin_model.OrderStatusPendingConfig,
		admin_model.OrderStatusRejected,
	}, allowed)

	// 返回的是副本，调用方修改不影响状态机
	if len(allowed) > 0 {
		allowed[0] = "mutated"
	}
	assert.True(t, machine.CanTransition(
		admin_model.OrderStatusConfirmedPayment, admin_model.OrderStatusPendingConfig))
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, isKnownStatus(admin_model.OrderStatusPendingPayment))
	assert.True(t, isKnownStatus(admin_model.OrderStatusRejected))
	assert.False(t, isKnownStatus("paid"))
	assert.False(t, isKnownStatus(""))
}

func TestExpiryFromDuration(t *testing.T) {
	from := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	cases := []struct {
		duration string
		want     time.Time
	}{
		{admin_model.DurationTrial, from.AddDate(0, 0, 7)},
		{admin_model.Duration1Month, from.AddDate(0, 1, 0)},
		{admin_model.Duration3Months, from.AddDate(0, 3, 0)},
		{admin_model.Duration6Months, from.AddDate(0, 6, 0)},
		{admin_model.Duration1Year, from.AddDate(1, 0, 0)},
	}
	for _, tc := range cases {
		got := expiryFromDuration(tc.duration, from)
		if assert.NotNil(t, got, tc.duration) {
			assert.True(t, got.Equal(tc.want), "duration=%s got=%v", tc.duration, got)
		}
	}

	// 终身版没有到期时间
	assert.Nil(t, expiryFromDuration(admin_model.DurationLifetime, from))
}
