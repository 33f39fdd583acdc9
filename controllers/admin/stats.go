package admin

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"zhixing-admin/inout"
	"zhixing-admin/pkg/response"
)

// GetStats 统计查询
func GetStats(c *gin.Context) {
	var params inout.StatsQueryReq
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	data, err := statsService.GetStats(params)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	response.Success(c, data)
}

// RecomputeStats 触发全量重算
//
// 同步执行，返回成功与失败的销售集合。部分失败返回 200，失败
// 明细在响应体里，调用方据此决定是否重试。
func RecomputeStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := statsService.FullRecompute(ctx)
	if err != nil {
		response.Error(c, response.INTERNAL_ERROR, err.Error())
		return
	}
	response.Success(c, result)
}
