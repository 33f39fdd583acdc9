package admin

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"zhixing-admin/inout"
	"zhixing-admin/pkg/response"
	"zhixing-admin/services/admin_service"
)

var orderService = admin_service.NewOrderService()

// CreateOrder 创建订单
func CreateOrder(c *gin.Context) {
	var params inout.CreateOrderReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	order, err := orderService.CreateOrder(params)
	if err != nil {
		if errors.Is(err, admin_service.ErrUnknownAgent) {
			response.Error(c, response.NOT_FOUND, err.Error())
			return
		}
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, order)
}

// TransitionOrder 变更订单状态
func TransitionOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "订单ID格式错误")
		return
	}

	var params inout.OrderTransitionReq
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	operator := c.GetString("username")
	order, err := orderService.TransitionOrder(orderID, params, operator)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, response.NOT_FOUND, "订单不存在")
		case errors.Is(err, admin_service.ErrInvalidTransition):
			response.Error(c, response.CONFLICT, err.Error())
		default:
			response.Error(c, response.INTERNAL_ERROR, err.Error())
		}
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表
func ListOrders(c *gin.Context) {
	var params inout.OrderListReq
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	data, err := orderService.ListOrders(params)
	if err != nil {
		response.Error(c, response.INTERNAL_ERROR, err.Error())
		return
	}
	response.Success(c, data)
}

// GetOrderDetail 订单详情
func GetOrderDetail(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "订单ID格式错误")
		return
	}

	data, err := orderService.GetOrderDetail(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, response.NOT_FOUND, "订单不存在")
			return
		}
		response.Error(c, response.INTERNAL_ERROR, err.Error())
		return
	}
	response.Success(c, data)
}

// GetOrderHistory 订单状态变更历史
func GetOrderHistory(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "订单ID格式错误")
		return
	}

	items, err := orderService.GetOrderHistory(orderID)
	if err != nil {
		response.Error(c, response.INTERNAL_ERROR, err.Error())
		return
	}
	response.Success(c, items)
}
