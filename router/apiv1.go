package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zhixing-admin/api"
	"zhixing-admin/controllers/admin"
	"zhixing-admin/db"
	"zhixing-admin/middleware"
	"zhixing-admin/pkg/monitoring"
	"zhixing-admin/pkg/response"
	"zhixing-admin/redis"
)

// InitRouter 初始化路由
func InitRouter() *gin.Engine {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.Cors(),
		middleware.RequestLog(),
		monitoring.PrometheusMiddleware(),
	)

	// 公开接口
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.POST("/api/admin/auth/login", api.Login)

	// 管理端接口，需要登录
	adminGroup := engine.Group("/api/admin", middleware.JWTAuth())
	{
		adminGroup.POST("/auth/logout", api.Logout)

		orders := adminGroup.Group("/orders")
		{
			orders.POST("", admin.CreateOrder)
			orders.GET("", admin.ListOrders)
			orders.GET("/:id", admin.GetOrderDetail)
			orders.GET("/:id/history", admin.GetOrderHistory)
			orders.POST("/:id/transition", admin.TransitionOrder)
		}

		sales := adminGroup.Group("/sales")
		{
			sales.POST("/primary", admin.CreatePrimarySales)
			sales.POST("/secondary", admin.CreateSecondarySales)
			sales.GET("", admin.ListSales)
			sales.PUT("/:code", admin.UpdateSales)
			sales.POST("/:code/payouts", admin.RecordPayout)
		}

		stats := adminGroup.Group("/stats")
		{
			stats.GET("", admin.GetStats)
			stats.POST("/recompute", admin.RecomputeStats)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		response.Error(c, response.NOT_FOUND)
	})

	return engine
}

// healthCheck 健康检查，报告各依赖组件状态
func healthCheck(c *gin.Context) {
	dbOK := true
	if sqlDB, err := db.Dao.DB(); err != nil || sqlDB.Ping() != nil {
		dbOK = false
	}

	status := "ok"
	if !dbOK {
		status = "degraded"
	}
	response.Success(c, gin.H{
		"status": status,
		"mysql":  dbOK,
		"redis":  redis.IsConnected(),
	})
}
