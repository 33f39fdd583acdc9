package admin_service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhixing-admin/model/admin_model"
)

var errInjected = errors.New("storage unavailable")

var defaultEligible = []string{
	admin_model.OrderStatusConfirmedPayment,
	admin_model.OrderStatusPendingConfig,
	admin_model.OrderStatusConfirmedConfig,
}

func testOrder(no, salesCode, status, amount string, paymentTime time.Time) *admin_model.SalesOrder {
	return &admin_model.SalesOrder{
		OrderNo:       no,
		Amount:        dec(amount),
		PaymentMethod: admin_model.PaymentMethodCrypto,
		Status:        status,
		SalesCode:     salesCode,
		CreateTime:    paymentTime.Add(-time.Hour),
		PaymentTime:   &paymentTime,
	}
}

func TestIsEligible(t *testing.T) {
	assert.True(t, isEligible(admin_model.OrderStatusConfirmedPayment, defaultEligible))
	assert.True(t, isEligible(admin_model.OrderStatusConfirmedConfig, defaultEligible))
	assert.False(t, isEligible(admin_model.OrderStatusPendingPayment, defaultEligible))
	assert.False(t, isEligible(admin_model.OrderStatusRejected, defaultEligible))
}

func TestOrderEffectiveTime(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.Local)
	paid := created.Add(2 * time.Hour)
	configured := created.Add(5 * time.Hour)

	order := &admin_model.SalesOrder{CreateTime: created}
	assert.True(t, orderEffectiveTime(order).Equal(created), "无时间戳退回创建时间")

	order.ConfigTime = &configured
	assert.True(t, orderEffectiveTime(order).Equal(configured), "无收款时间取开通时间")

	order.PaymentTime = &paid
	assert.True(t, orderEffectiveTime(order).Equal(paid), "收款时间优先")
}

func TestBucketsForTime(t *testing.T) {
	at := time.Date(2026, 8, 29, 23, 30, 0, 0, time.Local)
	buckets := bucketsForTime(at)

	require.Len(t, buckets, 3)
	assert.Equal(t, bucketRef{Period: admin_model.StatsPeriodDay, Key: "2026-08-29"}, buckets[0])
	assert.Equal(t, bucketRef{Period: admin_model.StatsPeriodMonth, Key: "2026-08"}, buckets[1])
	assert.Equal(t, bucketRef{Period: admin_model.StatsPeriodTotal, Key: admin_model.StatsBucketTotal}, buckets[2])
}

func TestOrderContributionsSecondaryWithParent(t *testing.T) {
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.25", parent)
	order := testOrder("ZX001", "SS001", admin_model.OrderStatusConfirmedPayment, "1588",
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local))

	contribs := orderContributions(order, agent, dec("0.40"), dec("7.15"))

	require.Len(t, contribs, 2)

	// 单量与流水只记在卖单销售名下
	seller := contribs[0]
	assert.Equal(t, "SS001", seller.Code)
	assert.Equal(t, int64(1), seller.Delta.Orders)
	assert.True(t, seller.Delta.Gross.Equal(dec("1588.00")), "gross %s", seller.Delta.Gross)
	assert.True(t, seller.Delta.Owed.Equal(dec("397.00")), "owed %s", seller.Delta.Owed)
	assert.True(t, seller.Delta.Paid.IsZero())

	// 一级只拿分成金额
	p := contribs[1]
	assert.Equal(t, "PS001", p.Code)
	assert.Equal(t, int64(0), p.Delta.Orders)
	assert.True(t, p.Delta.Gross.IsZero())
	assert.True(t, p.Delta.Owed.Equal(dec("238.20")), "parent owed %s", p.Delta.Owed)
}

func TestOrderContributionsPrimary(t *testing.T) {
	agent := primaryAgent("PS001", "0.40")
	order := testOrder("ZX002", "PS001", admin_model.OrderStatusConfirmedConfig, "500",
		time.Date(2026, 8, 2, 9, 0, 0, 0, time.Local))

	contribs := orderContributions(order, agent, dec("0.40"), dec("7.15"))

	require.Len(t, contribs, 1)
	assert.True(t, contribs[0].Delta.Owed.Equal(dec("200.00")), "owed %s", contribs[0].Delta.Owed)
}

func TestStatsDeltaScale(t *testing.T) {
	delta := statsDelta{Orders: 1, Gross: dec("100"), Owed: dec("25"), Paid: dec("10")}

	same := delta.scale(1)
	assert.Equal(t, int64(1), same.Orders)

	neg := delta.scale(-1)
	assert.Equal(t, int64(-1), neg.Orders)
	assert.True(t, neg.Gross.Equal(dec("-100")))
	assert.True(t, neg.Owed.Equal(dec("-25")))
	assert.True(t, neg.Paid.Equal(dec("-10")))
}

func TestAccumulatorAddThenRemoveConverges(t *testing.T) {
	// 订单进入计佣集合后又被拒绝，正负增量抵消后快照归零，
	// 与全量重算（该订单不计入）一致。
	agent := primaryAgent("PS001", "0.40")
	order := testOrder("ZX003", "PS001", admin_model.OrderStatusConfirmedPayment, "1000",
		time.Date(2026, 8, 3, 10, 0, 0, 0, time.Local))

	acc := newSnapshotAccumulator()
	buckets := bucketsForTime(orderEffectiveTime(order))
	for _, contrib := range orderContributions(order, agent, dec("0.40"), dec("7.15")) {
		acc.add(contrib.Code, buckets, contrib.Delta)
		acc.add(contrib.Code, buckets, contrib.Delta.scale(-1))
	}

	for _, bucket := range acc.sortedBuckets("PS001") {
		sum := acc["PS001"][bucket]
		assert.Equal(t, int64(0), sum.Orders)
		assert.True(t, sum.Gross.IsZero())
		assert.True(t, sum.Owed.IsZero())
		assert.True(t, sum.Paid.IsZero())
	}
}

func TestIncrementalMatchesFullRecomputeFold(t *testing.T) {
	// 同一批订单，逐笔增量折叠与一次性全量折叠必须得到相同快照
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	primarySeller := primaryAgent("PS001", "0.40")
	attached := secondaryAgent("SS001", "0.25", parent)
	independent := secondaryAgent("SS002", "0.30", nil)

	aug1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.Local)
	aug15 := time.Date(2026, 8, 15, 18, 0, 0, 0, time.Local)
	jul20 := time.Date(2026, 7, 20, 9, 0, 0, 0, time.Local)

	type event struct {
		order *admin_model.SalesOrder
		agent *admin_model.SalesAgent
	}
	events := []event{
		{testOrder("ZX101", "PS001", admin_model.OrderStatusConfirmedConfig, "1588", aug1), primarySeller},
		{testOrder("ZX102", "SS001", admin_model.OrderStatusConfirmedPayment, "1588", aug1), attached},
		{testOrder("ZX103", "SS001", admin_model.OrderStatusPendingConfig, "500", aug15), attached},
		{testOrder("ZX104", "SS002", admin_model.OrderStatusConfirmedConfig, "300", jul20), independent},
	}

	incremental := newSnapshotAccumulator()
	for _, ev := range events {
		buckets := bucketsForTime(orderEffectiveTime(ev.order))
		for _, contrib := range orderContributions(ev.order, ev.agent, dec("0.40"), dec("7.15")) {
			incremental.add(contrib.Code, buckets, contrib.Delta)
		}
	}

	full := newSnapshotAccumulator()
	for _, ev := range events {
		full.foldOrder(ev.order, ev.agent, dec("0.40"), dec("7.15"))
	}

	require.Equal(t, len(full), len(incremental))
	for code, byBucket := range full {
		incBuckets, ok := incremental[code]
		require.True(t, ok, "销售 %s 缺失", code)
		require.Equal(t, len(byBucket), len(incBuckets), "销售 %s 桶数不一致", code)
		for bucket, want := range byBucket {
			got, ok := incBuckets[bucket]
			require.True(t, ok, "销售 %s 缺桶 %v", code, bucket)
			assert.Equal(t, want.Orders, got.Orders)
			assert.True(t, want.Gross.Equal(got.Gross), "%s/%v gross %s != %s", code, bucket, want.Gross, got.Gross)
			assert.True(t, want.Owed.Equal(got.Owed), "%s/%v owed %s != %s", code, bucket, want.Owed, got.Owed)
			assert.True(t, want.Paid.Equal(got.Paid))
		}
	}

	// 一级自营单与二级分成合并在同一份快照里
	total := bucketRef{Period: admin_model.StatsPeriodTotal, Key: admin_model.StatsBucketTotal}
	ps := full["PS001"][total]
	require.NotNil(t, ps)
	assert.Equal(t, int64(1), ps.Orders, "分成不增加一级单量")
	assert.True(t, ps.Gross.Equal(dec("1588.00")), "分成不增加一级流水, got %s", ps.Gross)
	// 635.20 自营 + 238.20 + 75.00 两笔二级分成
	assert.True(t, ps.Owed.Equal(dec("948.40")), "owed %s", ps.Owed)
}

func TestFoldPayout(t *testing.T) {
	acc := newSnapshotAccumulator()
	payTime := time.Date(2026, 8, 20, 15, 0, 0, 0, time.Local)
	acc.foldPayout(&admin_model.SalesPayout{
		SalesCode: "PS001",
		Amount:    dec("150.00"),
		PayTime:   payTime,
	})

	total := bucketRef{Period: admin_model.StatsPeriodTotal, Key: admin_model.StatsBucketTotal}
	sum := acc["PS001"][total]
	require.NotNil(t, sum)
	assert.Equal(t, int64(0), sum.Orders)
	assert.True(t, sum.Owed.IsZero())
	assert.True(t, sum.Paid.Equal(dec("150.00")))

	day := bucketRef{Period: admin_model.StatsPeriodDay, Key: "2026-08-20"}
	require.NotNil(t, acc["PS001"][day])
	assert.True(t, acc["PS001"][day].Paid.Equal(dec("150.00")))
}

func TestNegativePendingSurfaced(t *testing.T) {
	// 打款超过应返佣时待返佣为负，原样呈现不截断
	acc := newSnapshotAccumulator()
	at := time.Date(2026, 8, 21, 10, 0, 0, 0, time.Local)

	order := testOrder("ZX201", "PS001", admin_model.OrderStatusConfirmedPayment, "100", at)
	acc.foldOrder(order, primaryAgent("PS001", "0.40"), dec("0.40"), dec("7.15"))
	acc.foldPayout(&admin_model.SalesPayout{SalesCode: "PS001", Amount: dec("100.00"), PayTime: at})

	total := bucketRef{Period: admin_model.StatsPeriodTotal, Key: admin_model.StatsBucketTotal}
	sum := acc["PS001"][total]
	pending := sum.Owed.Sub(sum.Paid)
	assert.True(t, pending.Equal(dec("-60.00")), "pending %s", pending)
}

func TestApplyContributionsSignedDeltas(t *testing.T) {
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.25", parent)
	order := testOrder("ZX301", "SS001", admin_model.OrderStatusConfirmedPayment, "1588",
		time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local))
	contribs := orderContributions(order, agent, dec("0.40"), dec("7.15"))

	applied := make(map[string]statsDelta)
	staled := make([]string, 0)
	err := applyContributions(contribs, bucketsForTime(orderEffectiveTime(order)), -1,
		func(code string, _ []bucketRef, delta statsDelta) error {
			applied[code] = delta
			return nil
		},
		func(code string) { staled = append(staled, code) })

	require.NoError(t, err)
	assert.Empty(t, staled, "全部成功时不标记未对账")
	require.Contains(t, applied, "SS001")
	require.Contains(t, applied, "PS001")
	assert.Equal(t, int64(-1), applied["SS001"].Orders)
	assert.True(t, applied["SS001"].Owed.Equal(dec("-397.00")), "got %s", applied["SS001"].Owed)
	assert.True(t, applied["PS001"].Owed.Equal(dec("-238.20")), "got %s", applied["PS001"].Owed)
}

func TestApplyContributionsMarksAllStaleOnPartialFailure(t *testing.T) {
	// 卖单方增量已落、一级分成写入失败：两方快照都不可信，
	// 必须全部标记为未对账，读取方不能把半套增量当成当前值。
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.25", parent)
	order := testOrder("ZX302", "SS001", admin_model.OrderStatusConfirmedPayment, "1588",
		time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local))
	contribs := orderContributions(order, agent, dec("0.40"), dec("7.15"))
	require.Len(t, contribs, 2)

	applied := make([]string, 0)
	staled := make([]string, 0)
	err := applyContributions(contribs, bucketsForTime(orderEffectiveTime(order)), 1,
		func(code string, _ []bucketRef, _ statsDelta) error {
			if code == "PS001" {
				return errInjected
			}
			applied = append(applied, code)
			return nil
		},
		func(code string) { staled = append(staled, code) })

	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, []string{"SS001"}, applied, "卖单方增量先落盘")
	assert.ElementsMatch(t, []string{"SS001", "PS001"}, staled)
}

func TestApplyContributionsFirstWriteFailure(t *testing.T) {
	// 第一笔就失败也要标记涉及的全部销售
	parent := &admin_model.ParentRef{Code: "PS001", CommissionRate: dec("0.40")}
	agent := secondaryAgent("SS001", "0.25", parent)
	order := testOrder("ZX303", "SS001", admin_model.OrderStatusConfirmedPayment, "100",
		time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local))
	contribs := orderContributions(order, agent, dec("0.40"), dec("7.15"))

	staled := make([]string, 0)
	err := applyContributions(contribs, bucketsForTime(orderEffectiveTime(order)), 1,
		func(string, []bucketRef, statsDelta) error { return errInjected },
		func(code string) { staled = append(staled, code) })

	require.ErrorIs(t, err, errInjected)
	assert.ElementsMatch(t, []string{"SS001", "PS001"}, staled)
}

func TestNegativePendingRows(t *testing.T) {
	rows := []admin_model.SalesStats{
		{SalesCode: "PS001", Period: admin_model.StatsPeriodDay, BucketKey: "2026-08-20",
			CommissionOwed: dec("40.00"), CommissionPaid: dec("100.00")},
		{SalesCode: "PS001", Period: admin_model.StatsPeriodMonth, BucketKey: "2026-08",
			CommissionOwed: dec("400.00"), CommissionPaid: dec("100.00")},
		{SalesCode: "PS001", Period: admin_model.StatsPeriodTotal, BucketKey: admin_model.StatsBucketTotal,
			CommissionOwed: dec("400.00"), CommissionPaid: dec("400.00")},
	}

	negative := negativePendingRows(rows)

	// 日桶重复打款在全量桶仍为非负时就被抓出来
	require.Len(t, negative, 1)
	assert.Equal(t, admin_model.StatsPeriodDay, negative[0].Period)
	assert.Equal(t, "2026-08-20", negative[0].BucketKey)
}

func TestSortedBucketsDeterministic(t *testing.T) {
	acc := newSnapshotAccumulator()
	for _, day := range []int{15, 1, 29} {
		at := time.Date(2026, 8, day, 10, 0, 0, 0, time.Local)
		order := testOrder("ZX", "PS001", admin_model.OrderStatusConfirmedPayment, "10", at)
		acc.foldOrder(order, primaryAgent("PS001", "0.40"), dec("0.40"), dec("7.15"))
	}

	buckets := acc.sortedBuckets("PS001")
	require.Len(t, buckets, 5) // 3个日桶 + 1个月桶 + 1个全量桶
	assert.Equal(t, "2026-08-01", buckets[0].Key)
	assert.Equal(t, "2026-08-15", buckets[1].Key)
	assert.Equal(t, "2026-08-29", buckets[2].Key)
	assert.Equal(t, admin_model.StatsPeriodMonth, buckets[3].Period)
	assert.Equal(t, admin_model.StatsPeriodTotal, buckets[4].Period)
}
