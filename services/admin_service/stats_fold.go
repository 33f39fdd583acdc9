package admin_service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"zhixing-admin/model/admin_model"
	"zhixing-admin/utils"
)

// bucketRef 统计桶标识
type bucketRef struct {
	Period string
	Key    string
}

// statsDelta 一次统计增量，全部为美元口径
type statsDelta struct {
	Orders int64
	Gross  decimal.Decimal
	Owed   decimal.Decimal
	Paid   decimal.Decimal
}

func (d statsDelta) scale(sign int64) statsDelta {
	if sign >= 0 {
		return d
	}
	factor := decimal.NewFromInt(-1)
	return statsDelta{
		Orders: -d.Orders,
		Gross:  d.Gross.Mul(factor),
		Owed:   d.Owed.Mul(factor),
		Paid:   d.Paid.Mul(factor),
	}
}

// agentContribution 一笔订单或打款对某个销售的统计贡献
type agentContribution struct {
	Code  string
	Delta statsDelta
}

// isEligible 订单状态是否计入收入/佣金统计
//
// 计佣状态集合是全局配置，所有读写路径必须统一使用，拒绝单
// 的订单在任何聚合里都不计数。
func isEligible(status string, eligibleStatuses []string) bool {
	for _, s := range eligibleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// orderEffectiveTime 订单计入统计桶的时间
//
// 优先收款时间，其次开通时间，都没有时退回创建时间。桶永远由
// 订单自身的时间决定，和当前时刻无关，补录订单会落进历史桶。
func orderEffectiveTime(order *admin_model.SalesOrder) time.Time {
	if order.PaymentTime != nil {
		return *order.PaymentTime
	}
	if order.ConfigTime != nil {
		return *order.ConfigTime
	}
	return order.CreateTime
}

// bucketsForTime 某个时间点归属的三个统计桶
func bucketsForTime(t time.Time) []bucketRef {
	return []bucketRef{
		{Period: admin_model.StatsPeriodDay, Key: utils.DayBucket(t)},
		{Period: admin_model.StatsPeriodMonth, Key: utils.MonthBucket(t)},
		{Period: admin_model.StatsPeriodTotal, Key: admin_model.StatsBucketTotal},
	}
}

// orderContributions 计算一笔计佣订单对各销售的统计贡献
//
// 订单的单量与流水只记在卖出订单的销售名下，挂靠的一级只拿
// 分成金额。
func orderContributions(order *admin_model.SalesOrder, agent *admin_model.SalesAgent, ceilingRate, exchangeRate decimal.Decimal) []agentContribution {
	amount := NormalizeAmount(order.Amount, order.PaymentMethod, exchangeRate)
	split := CalculateCommission(amount, agent, ceilingRate)

	contribs := []agentContribution{
		{
			Code: agent.Code,
			Delta: statsDelta{
				Orders: 1,
				Gross:  amount,
				Owed:   split.SellerCommission,
			},
		},
	}
	if split.ParentCode != "" {
		contribs = append(contribs, agentContribution{
			Code:  split.ParentCode,
			Delta: statsDelta{Owed: split.ParentCommission},
		})
	}
	return contribs
}

// payoutContribution 一笔返佣打款的统计贡献
func payoutContribution(payout *admin_model.SalesPayout) agentContribution {
	return agentContribution{
		Code:  payout.SalesCode,
		Delta: statsDelta{Paid: payout.Amount},
	}
}

// applyContributions 按序落一组带符号的贡献
//
// 任何一方写入失败时，本次涉及的全部销售（卖单方和分成方）都
// 标记为未对账：已落的增量和未落的增量此刻都不可信，读取方必须
// 看到 stale 标记，直到下一次全量重算收敛。
func applyContributions(contribs []agentContribution, buckets []bucketRef, sign int64,
	apply func(code string, buckets []bucketRef, delta statsDelta) error,
	markStale func(code string)) error {
	for _, contrib := range contribs {
		if err := apply(contrib.Code, buckets, contrib.Delta.scale(sign)); err != nil {
			for _, c := range contribs {
				markStale(c.Code)
			}
			return err
		}
	}
	return nil
}

// negativePendingRows 过滤出待返佣为负的快照行
func negativePendingRows(rows []admin_model.SalesStats) []admin_model.SalesStats {
	negative := make([]admin_model.SalesStats, 0)
	for _, row := range rows {
		if row.CommissionOwed.Sub(row.CommissionPaid).IsNegative() {
			negative = append(negative, row)
		}
	}
	return negative
}

// snapshotAccumulator 内存中的快照累加器
//
// 增量维护和全量重算都通过它折叠同一套贡献函数，保证两种模式
// 收敛到一致的结果。
type snapshotAccumulator map[string]map[bucketRef]*statsDelta

func newSnapshotAccumulator() snapshotAccumulator {
	return make(snapshotAccumulator)
}

func (acc snapshotAccumulator) add(code string, buckets []bucketRef, delta statsDelta) {
	byBucket, ok := acc[code]
	if !ok {
		byBucket = make(map[bucketRef]*statsDelta)
		acc[code] = byBucket
	}
	for _, bucket := range buckets {
		sum, ok := byBucket[bucket]
		if !ok {
			sum = &statsDelta{}
			byBucket[bucket] = sum
		}
		sum.Orders += delta.Orders
		sum.Gross = sum.Gross.Add(delta.Gross)
		sum.Owed = sum.Owed.Add(delta.Owed)
		sum.Paid = sum.Paid.Add(delta.Paid)
	}
}

// foldOrder 将一笔计佣订单折叠进累加器
func (acc snapshotAccumulator) foldOrder(order *admin_model.SalesOrder, agent *admin_model.SalesAgent, ceilingRate, exchangeRate decimal.Decimal) {
	buckets := bucketsForTime(orderEffectiveTime(order))
	for _, contrib := range orderContributions(order, agent, ceilingRate, exchangeRate) {
		acc.add(contrib.Code, buckets, contrib.Delta)
	}
}

// foldPayout 将一笔返佣打款折叠进累加器
func (acc snapshotAccumulator) foldPayout(payout *admin_model.SalesPayout) {
	contrib := payoutContribution(payout)
	acc.add(contrib.Code, bucketsForTime(payout.PayTime), contrib.Delta)
}

// sortedBuckets 稳定顺序遍历某个销售的桶，保证重算结果可复现
func (acc snapshotAccumulator) sortedBuckets(code string) []bucketRef {
	byBucket := acc[code]
	buckets := make([]bucketRef, 0, len(byBucket))
	for bucket := range byBucket {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Period != buckets[j].Period {
			return buckets[i].Period < buckets[j].Period
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}
