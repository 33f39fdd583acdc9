package admin_service

import (
	"github.com/shopspring/decimal"

	"zhixing-admin/model/admin_model"
)

// CommissionSplit 一笔订单的佣金分配结果
//
// ParentCode 为空表示该订单没有上级分成（一级直销或独立二级）。
type CommissionSplit struct {
	SellerCode       string
	SellerCommission decimal.Decimal
	ParentCode       string
	ParentCommission decimal.Decimal
}

// Total 该订单产生的佣金总额
func (s CommissionSplit) Total() decimal.Decimal {
	return s.SellerCommission.Add(s.ParentCommission)
}

// NormalizeAmount 将订单金额折算为美元口径
//
// 人民币计价的支付方式按固定汇率折算，折算发生在一切佣金计算
// 之前，后续所有统计均为美元金额。
func NormalizeAmount(amount decimal.Decimal, paymentMethod string, exchangeRate decimal.Decimal) decimal.Decimal {
	if paymentMethod == admin_model.PaymentMethodAlipay {
		return amount.DivRound(exchangeRate, 2)
	}
	return amount.Round(2)
}

// CalculateCommission 计算一笔订单的佣金分配
//
// amount 必须是已折算的美元金额。规则：
//   - 一级直销或独立二级：销售佣金 = 金额 × 佣金率，无上级分成；
//   - 挂靠一级的二级：销售佣金 = 金额 × 二级佣金率，一级分成
//     取总上限的差额 金额 × (上限 - 二级佣金率)，不为负；
//   - 佣金率被管理员置 0 的一方分成恒为 0。二级被置 0 时一级
//     不再按差额计算，改按其自身佣金率直接计酬。
func CalculateCommission(amount decimal.Decimal, agent *admin_model.SalesAgent, ceilingRate decimal.Decimal) CommissionSplit {
	split := CommissionSplit{
		SellerCode:       agent.Code,
		SellerCommission: decimal.Zero,
		ParentCommission: decimal.Zero,
	}

	sellerRate := agent.CommissionRate
	if !sellerRate.IsZero() {
		split.SellerCommission = amount.Mul(sellerRate).Round(2)
	}

	if agent.Kind != admin_model.SalesKindSecondary || agent.Parent == nil {
		return split
	}

	split.ParentCode = agent.Parent.Code
	if agent.Parent.CommissionRate.IsZero() {
		// 上级被置 0，分成压制为 0
		return split
	}

	if sellerRate.IsZero() {
		// 二级被置 0，上级按自身佣金率直接计酬
		split.ParentCommission = amount.Mul(agent.Parent.CommissionRate).Round(2)
		return split
	}

	residual := ceilingRate.Sub(sellerRate)
	if residual.IsNegative() {
		residual = decimal.Zero
	}
	split.ParentCommission = amount.Mul(residual).Round(2)
	return split
}
