package admin_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhixing-admin/model/admin_model"
)

func strPtr(s string) *string { return &s }

func TestResolveSecondaryAgentsSkipsDanglingParent(t *testing.T) {
	// 全量重算面向数据受损的恢复场景：挂靠一级缺失的二级销售
	// 只能跳过并警告，不能让整批重算中止。
	primaryByCode := map[string]*admin_model.PrimarySales{
		"PS001": {SalesCode: "PS001", WechatName: "一级甲", CommissionRate: dec("0.40")},
	}
	secondaries := []admin_model.SecondarySales{
		{SalesCode: "SS001", WechatName: "二级甲", CommissionRate: dec("0.25"), PrimarySalesCode: strPtr("PS001")},
		{SalesCode: "SS002", WechatName: "二级乙", CommissionRate: dec("0.30"), PrimarySalesCode: strPtr("PS404")},
		{SalesCode: "SS003", WechatName: "二级丙", CommissionRate: dec("0.30")},
	}

	agents, warnings := resolveSecondaryAgents(secondaries, primaryByCode)

	require.Len(t, agents, 2, "脏数据跳过，其余继续")
	assert.Equal(t, "SS001", agents[0].Code)
	require.NotNil(t, agents[0].Parent)
	assert.Equal(t, "PS001", agents[0].Parent.Code)
	assert.True(t, agents[0].Parent.CommissionRate.Equal(dec("0.40")))

	assert.Equal(t, "SS003", agents[1].Code)
	assert.Nil(t, agents[1].Parent)
	assert.True(t, agents[1].IsIndependent())

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "SS002")
	assert.Contains(t, warnings[0], "PS404")
}

func TestResolveSecondaryAgentsEmptyParentCode(t *testing.T) {
	// 空字符串的挂靠编码等同于独立二级
	secondaries := []admin_model.SecondarySales{
		{SalesCode: "SS001", CommissionRate: dec("0.30"), PrimarySalesCode: strPtr("")},
	}

	agents, warnings := resolveSecondaryAgents(secondaries, nil)

	require.Len(t, agents, 1)
	assert.Nil(t, agents[0].Parent)
	assert.Empty(t, warnings)
}
