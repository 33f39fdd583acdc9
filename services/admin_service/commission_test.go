package admin_service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhixing-admin/model/admin_model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func primaryAgent(code, rate string) *admin_model.SalesAgent {
	return &admin_model.SalesAgent{
		Kind:           admin_model.SalesKindPrimary,
		Code:           code,
		CommissionRate: dec(rate),
	}
}

func secondaryAgent(code, rate string, parent *admin_model.ParentRef) *admin_model.SalesAgent {
	return &admin_model.SalesAgent{
		Kind:           admin_model.SalesKindSecondary,
		Code:           code,
		CommissionRate: dec(rate),
		Parent:         parent,
	}
}

func TestNormalizeAmount(t *testing.T) {
	exchange := dec("7.15")

	t.Run("人民币按固定汇率折算", func(t *testing.T) {
		got := NormalizeAmount(dec("715"), admin_model.PaymentMethodAlipay, exchange)
		assert.True(t, got.Equal(dec("100.00")), "got %s", got)
	})

	t.Run("美元原样保留", func(t *testing.T) {
		got := NormalizeAmount(dec("188"), admin_model.PaymentMethodCrypto, exchange)
		assert.True(t, got.Equal(dec("188.00")), "got %s", got)
	})

	t.Run("折算保留两位小数", func(t *testing.T) {
		got := NormalizeAmount(dec("1588"), admin_model.PaymentMethodAlipay, exchange)
		assert.True(t, got.Equal(dec("222.10")), "got %s", got)
	})
}

func TestCalculateCommissionPrimary(t *testing.T) {
	ceiling := dec("0.40")
	agent := primaryAgent("PS001", "0.40")

	split := CalculateCommission(dec("1588"), agent, ceiling)

	assert.Equal(t, "PS001", split.SellerCode)
	assert.True(t, split.SellerCommission.Equal(dec("635.20")), "got %s", split.SellerCommission)
	assert.Empty(t, split.ParentCode)
	assert.True(t, split.ParentCommission.IsZero())
}

func TestCalculateCommissionSecondaryWithParent(t *testing.T) {
	ceiling := dec("0.40")
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.25", parent)

	split := CalculateCommission(dec("1588"), agent, ceiling)

	assert.True(t, split.SellerCommission.Equal(dec("397.00")), "seller got %s", split.SellerCommission)
	assert.Equal(t, "PS001", split.ParentCode)
	assert.True(t, split.ParentCommission.Equal(dec("238.20")), "parent got %s", split.ParentCommission)
}

func TestCalculateCommissionIndependentSecondary(t *testing.T) {
	agent := secondaryAgent("SS002", "0.30", nil)

	split := CalculateCommission(dec("1000"), agent, dec("0.40"))

	assert.True(t, split.SellerCommission.Equal(dec("300.00")), "got %s", split.SellerCommission)
	assert.Empty(t, split.ParentCode)
	assert.True(t, split.ParentCommission.IsZero())
}

func TestCalculateCommissionRateAboveCeiling(t *testing.T) {
	// 二级佣金率高于上限时一级差额钳制到 0，不出现负分成
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.45", parent)

	split := CalculateCommission(dec("1000"), agent, dec("0.40"))

	assert.True(t, split.SellerCommission.Equal(dec("450.00")), "got %s", split.SellerCommission)
	assert.Equal(t, "PS001", split.ParentCode)
	assert.True(t, split.ParentCommission.IsZero(), "got %s", split.ParentCommission)
}

func TestCalculateCommissionZeroRates(t *testing.T) {
	t.Run("二级被置0时一级按自身佣金率计酬", func(t *testing.T) {
		parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
		agent := secondaryAgent("SS001", "0", parent)

		split := CalculateCommission(dec("1000"), agent, dec("0.40"))

		assert.True(t, split.SellerCommission.IsZero())
		assert.True(t, split.ParentCommission.Equal(dec("400.00")), "got %s", split.ParentCommission)
	})

	t.Run("一级被置0时分成压制为0", func(t *testing.T) {
		parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: decimal.Zero}
		agent := secondaryAgent("SS001", "0.25", parent)

		split := CalculateCommission(dec("1000"), agent, dec("0.40"))

		assert.True(t, split.SellerCommission.Equal(dec("250.00")), "got %s", split.SellerCommission)
		assert.Equal(t, "PS001", split.ParentCode)
		assert.True(t, split.ParentCommission.IsZero())
	})

	t.Run("一级直销被置0", func(t *testing.T) {
		agent := primaryAgent("PS002", "0")
		split := CalculateCommission(dec("1000"), agent, dec("0.40"))
		assert.True(t, split.SellerCommission.IsZero())
	})
}

func TestCalculateCommissionTotalBounded(t *testing.T) {
	// 正常佣金率下订单总佣金不超过 金额 × 上限
	ceiling := dec("0.40")
	amount := dec("2345.67")
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}

	for _, rate := range []string{"0.05", "0.10", "0.25", "0.30", "0.40"} {
		agent := secondaryAgent("SS001", rate, parent)
		split := CalculateCommission(amount, agent, ceiling)

		bound := amount.Mul(ceiling).Add(dec("0.01"))
		require.True(t, split.Total().LessThanOrEqual(bound),
			"rate=%s total=%s bound=%s", rate, split.Total(), bound)
	}
}

func TestNormalizeBeforeCommission(t *testing.T) {
	// 人民币订单先折算再计佣：1588 CNY / 7.15 = 222.10 USD
	exchange := dec("7.15")
	amount := NormalizeAmount(dec("1588"), admin_model.PaymentMethodAlipay, exchange)

	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	split := CalculateCommission(amount, secondaryAgent("SS001", "0.25", parent), dec("0.40"))

	assert.True(t, split.SellerCommission.Equal(dec("55.53")), "seller got %s", split.SellerCommission)
	assert.True(t, split.ParentCommission.Equal(dec("33.32")), "parent got %s", split.ParentCommission)
}
