package admin_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"zhixing-admin/db"
	"zhixing-admin/inout"
	"zhixing-admin/model/admin_model"
	"zhixing-admin/pkg/config"
	"zhixing-admin/pkg/goroutinepool"
	"zhixing-admin/pkg/monitoring"
	"zhixing-admin/redis"
	"zhixing-admin/services"
	"zhixing-admin/utils"
)

// StatsService 统计引擎
//
// 销售统计快照的唯一写入方。其他模块需要统计数字时必须经由
// 本服务读取，不允许自行聚合订单表。
type StatsService struct {
	sales *SalesService
}

func NewStatsService() *StatsService {
	return &StatsService{sales: &SalesService{}}
}

// HandleTransition 增量维护入口
//
// 订单状态跨入或跨出计佣集合时，把带符号的统计增量折叠进卖单
// 销售以及挂靠一级的快照。未跨越边界的转换不产生任何增量。
// 销售编码无法解析时跳过并上报，不折叠进任何默认桶。增量写入
// 失败时涉及的销售全部标记为未对账，等下一次全量重算收敛。
func (s *StatsService) HandleTransition(res *TransitionResult) error {
	if res == nil || !res.Changed {
		return nil
	}

	cfg := config.GetConfig()
	eligible := cfg.Commission.EligibleStatuses
	was := isEligible(res.FromStatus, eligible)
	now := isEligible(res.ToStatus, eligible)
	if was == now {
		return nil
	}

	order := res.Order
	agent, err := s.sales.ResolveAgent(order.SalesCode)
	if err != nil {
		if errors.Is(err, ErrUnknownAgent) {
			monitoring.RecordUnknownAgentOrder()
			log.Printf("数据完整性警告: 订单 %s 引用的销售编码 %s 无法解析，统计已跳过",
				order.OrderNo, order.SalesCode)
		}
		return err
	}

	sign := int64(1)
	if was && !now {
		sign = -1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	buckets := bucketsForTime(orderEffectiveTime(order))
	contribs := orderContributions(order, agent, cfg.Commission.Ceiling(), cfg.Commission.Exchange())
	err = applyContributions(contribs, buckets, sign,
		func(code string, buckets []bucketRef, delta statsDelta) error {
			return s.applyContribution(ctx, code, buckets, delta)
		},
		s.markStale)
	if err != nil {
		return fmt.Errorf("折叠订单 %s 的统计增量失败: %w", order.OrderNo, err)
	}
	return nil
}

// RecordPayout 录入返佣打款并折叠已返佣增量
//
// 已返佣金额只来源于打款记录，订单状态不代表佣金已打款。
func (s *StatsService) RecordPayout(code string, params inout.RecordPayoutReq) (*admin_model.SalesPayout, error) {
	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("打款金额格式错误 %q: %w", params.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("打款金额必须为正: %s", amount)
	}

	if _, err := s.sales.ResolveAgent(code); err != nil {
		return nil, err
	}

	payTime := time.Now()
	if params.PayTime != "" {
		parsed, err := utils.ParseDateTime(params.PayTime)
		if err != nil {
			return nil, fmt.Errorf("打款时间格式错误 %q: %w", params.PayTime, err)
		}
		payTime = parsed
	}

	payout := admin_model.SalesPayout{
		SalesCode:  code,
		Amount:     amount.Round(2),
		PayTime:    payTime,
		Remark:     params.Remark,
		CreateTime: time.Now(),
	}
	if err := db.Dao.Create(&payout).Error; err != nil {
		return nil, fmt.Errorf("创建打款记录失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	contrib := payoutContribution(&payout)
	if err := s.applyContribution(ctx, contrib.Code, bucketsForTime(payout.PayTime), contrib.Delta); err != nil {
		// 打款记录已落库但快照没跟上，标记等全量重算收敛
		s.markStale(contrib.Code)
		return nil, fmt.Errorf("折叠返佣增量失败: %w", err)
	}
	return &payout, nil
}

// applyContribution 在销售锁内把一组桶的增量写入快照
//
// 同一销售的快照更新必须串行，否则两笔订单并发转换会互相覆盖。
// 不同销售之间互不影响，可以并行。
func (s *StatsService) applyContribution(ctx context.Context, code string, buckets []bucketRef, delta statsDelta) error {
	return s.withAgentLock(ctx, code, func() error {
		err := db.Dao.Transaction(func(tx *gorm.DB) error {
			for _, bucket := range buckets {
				if err := upsertBucket(tx, code, bucket, delta); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.checkPendingIntegrity(code, buckets)
		return nil
	})
}

// upsertBucket 单个桶的原子累加，行不存在则创建
func upsertBucket(tx *gorm.DB, code string, bucket bucketRef, delta statsDelta) error {
	now := time.Now()

	var row admin_model.SalesStats
	err := tx.Where("sales_code = ? AND period = ? AND bucket_key = ?",
		code, bucket.Period, bucket.Key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = admin_model.SalesStats{
			SalesCode:      code,
			Period:         bucket.Period,
			BucketKey:      bucket.Key,
			OrdersCount:    delta.Orders,
			GrossAmount:    delta.Gross,
			CommissionOwed: delta.Owed,
			CommissionPaid: delta.Paid,
			CreateTime:     now,
			UpdateTime:     now,
		}
		return tx.Create(&row).Error
	}
	if err != nil {
		return fmt.Errorf("查询统计快照失败: %w", err)
	}

	return tx.Model(&admin_model.SalesStats{}).
		Where("id = ?", row.Id).
		Updates(map[string]interface{}{
			"orders_count":    gorm.Expr("orders_count + ?", delta.Orders),
			"gross_amount":    gorm.Expr("gross_amount + ?", delta.Gross),
			"commission_owed": gorm.Expr("commission_owed + ?", delta.Owed),
			"commission_paid": gorm.Expr("commission_paid + ?", delta.Paid),
			"update_time":     now,
		}).Error
}

// withAgentLock 持有单个销售的分布式锁执行 fn
func (s *StatsService) withAgentLock(ctx context.Context, code string, fn func() error) error {
	key := "sales_stats_lock:" + code
	for {
		identifier, acquired, err := redis.AcquireLock(ctx, key, 10*time.Second)
		if err != nil {
			return err
		}
		if acquired {
			defer redis.ReleaseLock(ctx, key, identifier)
			return fn()
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("等待销售 %s 的统计锁超时: %w", code, ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// checkPendingIntegrity 校验刚写入的桶的待返佣金额
//
// owed - paid 为负说明重复打款或应返佣记录有误，只告警留给人工
// 排查，绝不截断回 0。逐桶检查，桶内的对账异常（比如某日重复
// 打款）不用等到全量桶也转负才暴露。
func (s *StatsService) checkPendingIntegrity(code string, buckets []bucketRef) {
	rows := make([]admin_model.SalesStats, 0, len(buckets))
	for _, bucket := range buckets {
		var row admin_model.SalesStats
		err := db.Dao.Where("sales_code = ? AND period = ? AND bucket_key = ?",
			code, bucket.Period, bucket.Key).First(&row).Error
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}

	for _, row := range negativePendingRows(rows) {
		pending := row.CommissionOwed.Sub(row.CommissionPaid)
		monitoring.RecordNegativePending()
		log.Printf("数据完整性告警: 销售 %s 在 %s/%s 桶待返佣为负 %s（应返 %s，已返 %s）",
			code, row.Period, row.BucketKey, pending, row.CommissionOwed, row.CommissionPaid)
		services.PublishAlert(services.AlertNegativePending, map[string]interface{}{
			"sales_code":      code,
			"period":          row.Period,
			"bucket_key":      row.BucketKey,
			"pending":         pending.String(),
			"commission_owed": row.CommissionOwed.String(),
			"commission_paid": row.CommissionPaid.String(),
		})
	}
}

// FullRecompute 全量重算
//
// 从订单与打款记录出发重建每个销售的快照，用于补录、迁移和
// 灾难恢复。逐销售独立提交，单个销售失败不影响其余销售，失败
// 集合随结果返回并把对应快照标记为未对账。重算是幂等的，且与
// 增量维护折叠同一套贡献函数，两种模式收敛到一致结果。
func (s *StatsService) FullRecompute(ctx context.Context) (*inout.RecomputeResp, error) {
	start := time.Now()
	cfg := config.GetConfig()

	agents, registryWarnings, err := s.sales.ListAllAgents()
	if err != nil {
		return nil, fmt.Errorf("加载销售列表失败: %w", err)
	}
	agentByCode := make(map[string]*admin_model.SalesAgent, len(agents))
	for _, agent := range agents {
		agentByCode[agent.Code] = agent
	}

	var orders []admin_model.SalesOrder
	if err := db.Dao.Where("status IN ?", cfg.Commission.EligibleStatuses).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("加载计佣订单失败: %w", err)
	}

	var payouts []admin_model.SalesPayout
	if err := db.Dao.Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("加载打款记录失败: %w", err)
	}

	acc := newSnapshotAccumulator()
	warnings := append(make([]string, 0, len(registryWarnings)), registryWarnings...)
	for i := range orders {
		order := &orders[i]
		agent, ok := agentByCode[order.SalesCode]
		if !ok {
			monitoring.RecordUnknownAgentOrder()
			warnings = append(warnings, fmt.Sprintf(
				"订单 %s 引用的销售编码 %s 无法解析，已跳过", order.OrderNo, order.SalesCode))
			continue
		}
		acc.foldOrder(order, agent, cfg.Commission.Ceiling(), cfg.Commission.Exchange())
	}
	for i := range payouts {
		payout := &payouts[i]
		if _, ok := agentByCode[payout.SalesCode]; !ok {
			warnings = append(warnings, fmt.Sprintf(
				"打款记录 %d 引用的销售编码 %s 无法解析，已跳过", payout.Id, payout.SalesCode))
			continue
		}
		acc.foldPayout(payout)
	}

	// 逐销售写入，互相独立，单个失败只标记该销售
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		succeeded int
		failed    []inout.RecomputeFailedItem
	)
	for _, agent := range agents {
		agent := agent
		wg.Add(1)
		write := func() error {
			return s.writeAgentSnapshot(ctx, agent.Code, acc)
		}
		callback := func(err error) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				monitoring.RecordRecomputeAgentFailure()
				log.Printf("全量重算销售 %s 失败: %v", agent.Code, err)
				s.markStale(agent.Code)
				failed = append(failed, inout.RecomputeFailedItem{
					SalesCode: agent.Code,
					Error:     err.Error(),
				})
			} else {
				succeeded++
			}
		}
		if err := goroutinepool.SubmitWithCallback(write, callback); err != nil {
			// 池过载时退回同步执行，重算不能因此丢销售
			callback(write())
		}
	}
	wg.Wait()

	elapsed := time.Since(start)
	monitoring.ObserveRecomputeDuration(elapsed)
	log.Printf("全量重算完成: 销售 %d, 成功 %d, 失败 %d, 警告 %d, 耗时 %v",
		len(agents), succeeded, len(failed), len(warnings), elapsed)

	if len(failed) > 0 {
		services.PublishAlert(services.AlertPartialRecompute, map[string]interface{}{
			"failed": failed,
		})
	}

	return &inout.RecomputeResp{
		TotalAgents: len(agents),
		Succeeded:   succeeded,
		Failed:      failed,
		Warnings:    warnings,
		ElapsedMs:   elapsed.Milliseconds(),
	}, nil
}

// writeAgentSnapshot 原子替换单个销售的全部快照行
func (s *StatsService) writeAgentSnapshot(ctx context.Context, code string, acc snapshotAccumulator) error {
	return s.withAgentLock(ctx, code, func() error {
		now := time.Now()
		return db.Dao.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("sales_code = ?", code).
				Delete(&admin_model.SalesStats{}).Error; err != nil {
				return fmt.Errorf("清除旧快照失败: %w", err)
			}
			byBucket := acc[code]
			for _, bucket := range acc.sortedBuckets(code) {
				sum := byBucket[bucket]
				row := admin_model.SalesStats{
					SalesCode:      code,
					Period:         bucket.Period,
					BucketKey:      bucket.Key,
					OrdersCount:    sum.Orders,
					GrossAmount:    sum.Gross,
					CommissionOwed: sum.Owed,
					CommissionPaid: sum.Paid,
					CreateTime:     now,
					UpdateTime:     now,
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("写入快照 %s/%s 失败: %w", bucket.Period, bucket.Key, err)
				}
			}
			return nil
		})
	})
}

// markStale 把重算失败的销售快照标记为未对账
func (s *StatsService) markStale(code string) {
	err := db.Dao.Model(&admin_model.SalesStats{}).
		Where("sales_code = ?", code).
		Updates(map[string]interface{}{
			"stale":       1,
			"update_time": time.Now(),
		}).Error
	if err != nil {
		log.Printf("标记销售 %s 快照为未对账失败: %v", code, err)
	}
}

// GetStats 统计查询
//
// 待返佣金额在此处由 owed - paid 推导，是唯一的计算点。负值原样
// 返回并告警。stale 标记透传给调用方，重算失败的销售数字不能
// 被当成当前值。
func (s *StatsService) GetStats(params inout.StatsQueryReq) (*inout.StatsSummaryResp, error) {
	bucket, err := resolveBucket(params.Period, params.Date)
	if err != nil {
		return nil, err
	}

	query := db.Dao.Model(&admin_model.SalesStats{}).
		Where("period = ? AND bucket_key = ?", bucket.Period, bucket.Key)
	if params.SalesCode != "" {
		query = query.Where("sales_code = ?", params.SalesCode)
	}

	var rows []admin_model.SalesStats
	if err := query.Order("sales_code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询统计快照失败: %w", err)
	}

	resp := &inout.StatsSummaryResp{
		Period:    bucket.Period,
		BucketKey: bucket.Key,
		Items:     make([]inout.SalesStatsItem, 0, len(rows)),
	}
	totalGross := decimal.Zero
	totalOwed := decimal.Zero
	totalPaid := decimal.Zero

	for _, row := range rows {
		pending := row.CommissionOwed.Sub(row.CommissionPaid)
		if pending.IsNegative() {
			monitoring.RecordNegativePending()
			log.Printf("数据完整性告警: 销售 %s 在 %s/%s 桶待返佣为负 %s",
				row.SalesCode, row.Period, row.BucketKey, pending)
		}

		resp.OrdersCount += row.OrdersCount
		totalGross = totalGross.Add(row.GrossAmount)
		totalOwed = totalOwed.Add(row.CommissionOwed)
		totalPaid = totalPaid.Add(row.CommissionPaid)
		if row.Stale == 1 {
			resp.HasStale = true
		}

		resp.Items = append(resp.Items, inout.SalesStatsItem{
			SalesCode:         row.SalesCode,
			Period:            row.Period,
			BucketKey:         row.BucketKey,
			OrdersCount:       row.OrdersCount,
			GrossAmount:       row.GrossAmount.StringFixed(2),
			CommissionOwed:    row.CommissionOwed.StringFixed(2),
			CommissionPaid:    row.CommissionPaid.StringFixed(2),
			CommissionPending: pending.StringFixed(2),
			Stale:             row.Stale == 1,
		})
	}

	resp.GrossAmount = totalGross.StringFixed(2)
	resp.CommissionOwed = totalOwed.StringFixed(2)
	resp.CommissionPaid = totalPaid.StringFixed(2)
	resp.CommissionPending = totalOwed.Sub(totalPaid).StringFixed(2)
	return resp, nil
}

// resolveBucket 解析查询的统计桶，日期缺省取当前时间所在桶
func resolveBucket(period, date string) (bucketRef, error) {
	switch period {
	case admin_model.StatsPeriodDay:
		if date == "" {
			date = utils.DayBucket(time.Now())
		}
		return bucketRef{Period: period, Key: date}, nil
	case admin_model.StatsPeriodMonth:
		if date == "" {
			date = utils.MonthBucket(time.Now())
		}
		return bucketRef{Period: period, Key: date}, nil
	case admin_model.StatsPeriodTotal:
		return bucketRef{Period: period, Key: admin_model.StatsBucketTotal}, nil
	default:
		return bucketRef{}, fmt.Errorf("不支持的统计周期: %s", period)
	}
}
