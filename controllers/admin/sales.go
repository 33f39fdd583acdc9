package admin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"zhixing-admin/inout"
	"zhixing-admin/pkg/response"
	"zhixing-admin/services/admin_service"
)

var (
	salesService = &admin_service.SalesService{}
	statsService = admin_service.NewStatsService()
)

// CreatePrimarySales 创建一级销售
func CreatePrimarySales(c *gin.Context) {
	var params inout.CreatePrimarySalesReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	sales, err := salesService.CreatePrimary(params)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, sales)
}

// CreateSecondarySales 创建二级销售
func CreateSecondarySales(c *gin.Context) {
	var params inout.CreateSecondarySalesReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	sales, err := salesService.CreateSecondary(params)
	if err != nil {
		if errors.Is(err, admin_service.ErrUnknownAgent) {
			response.Error(c, response.NOT_FOUND, err.Error())
			return
		}
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, sales)
}

// UpdateSales 更新销售信息
func UpdateSales(c *gin.Context) {
	code := c.Param("code")

	var params inout.UpdateSalesReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	if err := salesService.UpdateSales(code, params); err != nil {
		if errors.Is(err, admin_service.ErrUnknownAgent) {
			response.Error(c, response.NOT_FOUND, err.Error())
			return
		}
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, nil)
}

// ListSales 销售列表
func ListSales(c *gin.Context) {
	var params inout.SalesListReq
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	data, err := salesService.List(params)
	if err != nil {
		response.Error(c, response.INTERNAL_ERROR, err.Error())
		return
	}
	response.Success(c, data)
}

// RecordPayout 录入返佣打款
func RecordPayout(c *gin.Context) {
	code := c.Param("code")

	var params inout.RecordPayoutReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	payout, err := statsService.RecordPayout(code, params)
	if err != nil {
		if errors.Is(err, admin_service.ErrUnknownAgent) {
			response.Error(c, response.NOT_FOUND, err.Error())
			return
		}
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, payout)
}
