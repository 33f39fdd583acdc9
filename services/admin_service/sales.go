package admin_service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"zhixing-admin/db"
	"zhixing-admin/inout"
	"zhixing-admin/model/admin_model"
	"zhixing-admin/utils"
)

// ErrUnknownAgent 订单引用的销售编码无法解析
var ErrUnknownAgent = errors.New("未知的销售编码")

type SalesService struct{}

// ResolveAgent 按销售编码解析销售，只认编码不认微信名
//
// 二级销售挂靠的一级不存在时视为数据完整性错误。
func (s *SalesService) ResolveAgent(code string) (*admin_model.SalesAgent, error) {
	var primary admin_model.PrimarySales
	err := db.Dao.Where("sales_code = ?", code).First(&primary).Error
	if err == nil {
		return &admin_model.SalesAgent{
			Kind:           admin_model.SalesKindPrimary,
			Code:           primary.SalesCode,
			Name:           primary.WechatName,
			CommissionRate: primary.CommissionRate,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询一级销售失败: %w", err)
	}

	var secondary admin_model.SecondarySales
	err = db.Dao.Where("sales_code = ?", code).First(&secondary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, code)
	}
	if err != nil {
		return nil, fmt.Errorf("查询二级销售失败: %w", err)
	}

	agent := &admin_model.SalesAgent{
		Kind:           admin_model.SalesKindSecondary,
		Code:           secondary.SalesCode,
		Name:           secondary.WechatName,
		CommissionRate: secondary.CommissionRate,
	}
	if secondary.PrimarySalesCode != nil && *secondary.PrimarySalesCode != "" {
		var parent admin_model.PrimarySales
		err = db.Dao.Where("sales_code = ?", *secondary.PrimarySalesCode).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 二级销售 %s 挂靠的一级 %s 不存在",
				ErrUnknownAgent, code, *secondary.PrimarySalesCode)
		}
		if err != nil {
			return nil, fmt.Errorf("查询挂靠一级销售失败: %w", err)
		}
		agent.Parent = &admin_model.ParentRef{
			Code:           parent.SalesCode,
			Name:           parent.WechatName,
			CommissionRate: parent.CommissionRate,
		}
	}
	return agent, nil
}

// ListAllAgents 解析全部销售，供全量重算使用
//
// 挂靠一级缺失的二级销售跳过并附带数据完整性警告，不中断整批。
// 全量重算面向的正是数据受损后的恢复，单条脏数据不能让整批放弃。
func (s *SalesService) ListAllAgents() ([]*admin_model.SalesAgent, []string, error) {
	var primaries []admin_model.PrimarySales
	if err := db.Dao.Find(&primaries).Error; err != nil {
		return nil, nil, fmt.Errorf("查询一级销售失败: %w", err)
	}
	primaryByCode := make(map[string]*admin_model.PrimarySales, len(primaries))
	agents := make([]*admin_model.SalesAgent, 0, len(primaries))
	for i := range primaries {
		p := &primaries[i]
		primaryByCode[p.SalesCode] = p
		agents = append(agents, &admin_model.SalesAgent{
			Kind:           admin_model.SalesKindPrimary,
			Code:           p.SalesCode,
			Name:           p.WechatName,
			CommissionRate: p.CommissionRate,
		})
	}

	var secondaries []admin_model.SecondarySales
	if err := db.Dao.Find(&secondaries).Error; err != nil {
		return nil, nil, fmt.Errorf("查询二级销售失败: %w", err)
	}
	resolved, warnings := resolveSecondaryAgents(secondaries, primaryByCode)
	return append(agents, resolved...), warnings, nil
}

// resolveSecondaryAgents 批量解析二级销售，脏数据跳过并产出警告
func resolveSecondaryAgents(secondaries []admin_model.SecondarySales, primaryByCode map[string]*admin_model.PrimarySales) ([]*admin_model.SalesAgent, []string) {
	agents := make([]*admin_model.SalesAgent, 0, len(secondaries))
	warnings := make([]string, 0)
	for i := range secondaries {
		sec := &secondaries[i]
		agent := &admin_model.SalesAgent{
			Kind:           admin_model.SalesKindSecondary,
			Code:           sec.SalesCode,
			Name:           sec.WechatName,
			CommissionRate: sec.CommissionRate,
		}
		if sec.PrimarySalesCode != nil && *sec.PrimarySalesCode != "" {
			parent, ok := primaryByCode[*sec.PrimarySalesCode]
			if !ok {
				warnings = append(warnings, fmt.Sprintf(
					"二级销售 %s 挂靠的一级 %s 不存在，已跳过", sec.SalesCode, *sec.PrimarySalesCode))
				continue
			}
			agent.Parent = &admin_model.ParentRef{
				Code:           parent.SalesCode,
				Name:           parent.WechatName,
				CommissionRate: parent.CommissionRate,
			}
		}
		agents = append(agents, agent)
	}
	return agents, warnings
}

// CreatePrimary 创建一级销售
func (s *SalesService) CreatePrimary(params inout.CreatePrimarySalesReq) (*admin_model.PrimarySales, error) {
	rate, err := parseCommissionRate(params.CommissionRate)
	if err != nil {
		return nil, err
	}

	code := params.SalesCode
	if code == "" {
		code = utils.GenerateSalesCode(admin_model.SalesKindPrimary)
	}
	if err := s.checkCodeAvailable(code); err != nil {
		return nil, err
	}

	now := time.Now()
	sales := admin_model.PrimarySales{
		SalesCode:      code,
		WechatName:     params.WechatName,
		CommissionRate: rate,
		PaymentAddress: params.PaymentAddress,
		CreateTime:     now,
		UpdateTime:     now,
	}
	if err := db.Dao.Create(&sales).Error; err != nil {
		return nil, fmt.Errorf("创建一级销售失败: %w", err)
	}
	return &sales, nil
}

// CreateSecondary 创建二级销售，可挂靠一级或独立
func (s *SalesService) CreateSecondary(params inout.CreateSecondarySalesReq) (*admin_model.SecondarySales, error) {
	rate, err := parseCommissionRate(params.CommissionRate)
	if err != nil {
		return nil, err
	}

	code := params.SalesCode
	if code == "" {
		code = utils.GenerateSalesCode(admin_model.SalesKindSecondary)
	}
	if err := s.checkCodeAvailable(code); err != nil {
		return nil, err
	}

	var parentCode *string
	if params.PrimarySalesCode != "" {
		var parent admin_model.PrimarySales
		err := db.Dao.Where("sales_code = ?", params.PrimarySalesCode).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 挂靠的一级销售 %s 不存在", ErrUnknownAgent, params.PrimarySalesCode)
		}
		if err != nil {
			return nil, fmt.Errorf("查询挂靠一级销售失败: %w", err)
		}
		parentCode = &parent.SalesCode
	}

	now := time.Now()
	sales := admin_model.SecondarySales{
		SalesCode:        code,
		WechatName:       params.WechatName,
		CommissionRate:   rate,
		PrimarySalesCode: parentCode,
		PaymentAddress:   params.PaymentAddress,
		CreateTime:       now,
		UpdateTime:       now,
	}
	if err := db.Dao.Create(&sales).Error; err != nil {
		return nil, fmt.Errorf("创建二级销售失败: %w", err)
	}
	return &sales, nil
}

// UpdateSales 更新销售信息，佣金率可被置 0 以停止计酬
func (s *SalesService) UpdateSales(code string, params inout.UpdateSalesReq) error {
	updates := map[string]interface{}{
		"update_time": time.Now(),
	}
	if params.WechatName != nil {
		updates["wechat_name"] = *params.WechatName
	}
	if params.PaymentAddress != nil {
		updates["payment_address"] = *params.PaymentAddress
	}
	if params.CommissionRate != nil {
		rate, err := parseCommissionRate(*params.CommissionRate)
		if err != nil {
			return err
		}
		updates["commission_rate"] = rate
	}

	var primary admin_model.PrimarySales
	err := db.Dao.Where("sales_code = ?", code).First(&primary).Error
	if err == nil {
		if params.PrimarySalesCode != nil {
			return fmt.Errorf("一级销售不能设置挂靠")
		}
		return db.Dao.Model(&admin_model.PrimarySales{}).
			Where("sales_code = ?", code).
			Updates(updates).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询一级销售失败: %w", err)
	}

	var secondary admin_model.SecondarySales
	err = db.Dao.Where("sales_code = ?", code).First(&secondary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, code)
	}
	if err != nil {
		return fmt.Errorf("查询二级销售失败: %w", err)
	}

	if params.PrimarySalesCode != nil {
		if *params.PrimarySalesCode == "" {
			// 解除挂靠，转为独立二级销售
			updates["primary_sales_code"] = nil
		} else {
			var parent admin_model.PrimarySales
			err := db.Dao.Where("sales_code = ?", *params.PrimarySalesCode).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 挂靠的一级销售 %s 不存在", ErrUnknownAgent, *params.PrimarySalesCode)
			}
			if err != nil {
				return fmt.Errorf("查询挂靠一级销售失败: %w", err)
			}
			updates["primary_sales_code"] = parent.SalesCode
		}
	}

	return db.Dao.Model(&admin_model.SecondarySales{}).
		Where("sales_code = ?", code).
		Updates(updates).Error
}

// List 销售列表，一二级合并返回
func (s *SalesService) List(params inout.SalesListReq) (map[string]interface{}, error) {
	params.Page = max(params.Page, 1)
	params.PageSize = max(params.PageSize, 10)

	items := make([]inout.SalesItem, 0)

	if params.Kind == "" || params.Kind == admin_model.SalesKindPrimary {
		var primaries []admin_model.PrimarySales
		query := db.Dao.Model(&admin_model.PrimarySales{})
		if params.Search != "" {
			query = query.Where("sales_code LIKE ? OR wechat_name LIKE ?",
				"%"+params.Search+"%", "%"+params.Search+"%")
		}
		if err := query.Order("create_time DESC").Find(&primaries).Error; err != nil {
			return nil, err
		}
		for _, p := range primaries {
			items = append(items, inout.SalesItem{
				Id:             p.Id,
				Kind:           admin_model.SalesKindPrimary,
				SalesCode:      p.SalesCode,
				WechatName:     p.WechatName,
				CommissionRate: p.CommissionRate.String(),
				PaymentAddress: p.PaymentAddress,
				CreateTime:     utils.FormatTime(p.CreateTime),
			})
		}
	}

	if params.Kind == "" || params.Kind == admin_model.SalesKindSecondary {
		var secondaries []admin_model.SecondarySales
		query := db.Dao.Model(&admin_model.SecondarySales{})
		if params.Search != "" {
			query = query.Where("sales_code LIKE ? OR wechat_name LIKE ?",
				"%"+params.Search+"%", "%"+params.Search+"%")
		}
		if err := query.Order("create_time DESC").Find(&secondaries).Error; err != nil {
			return nil, err
		}
		for _, sec := range secondaries {
			item := inout.SalesItem{
				Id:             sec.Id,
				Kind:           admin_model.SalesKindSecondary,
				SalesCode:      sec.SalesCode,
				WechatName:     sec.WechatName,
				CommissionRate: sec.CommissionRate.String(),
				PaymentAddress: sec.PaymentAddress,
				CreateTime:     utils.FormatTime(sec.CreateTime),
			}
			if sec.PrimarySalesCode != nil {
				item.PrimarySalesCode = *sec.PrimarySalesCode
			}
			items = append(items, item)
		}
	}

	total := len(items)
	start := (params.Page - 1) * params.PageSize
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return map[string]interface{}{
		"total":    total,
		"items":    items[start:end],
		"page":     params.Page,
		"pageSize": params.PageSize,
	}, nil
}

func (s *SalesService) checkCodeAvailable(code string) error {
	var count int64
	db.Dao.Model(&admin_model.PrimarySales{}).Where("sales_code = ?", code).Count(&count)
	if count > 0 {
		return fmt.Errorf("销售编码 %s 已存在", code)
	}
	db.Dao.Model(&admin_model.SecondarySales{}).Where("sales_code = ?", code).Count(&count)
	if count > 0 {
		return fmt.Errorf("销售编码 %s 已存在", code)
	}
	return nil
}

// parseCommissionRate 解析并校验佣金率，必须在 [0,1] 内
func parseCommissionRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("佣金率格式错误 %q: %w", s, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("佣金率必须在 [0,1] 内: %s", s)
	}
	return rate, nil
}
