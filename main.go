package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zhixing-admin/config"
	"zhixing-admin/db"
	"zhixing-admin/mongodb"
	pkgconfig "zhixing-admin/pkg/config"
	"zhixing-admin/pkg/goroutinepool"
	"zhixing-admin/redis"
	"zhixing-admin/router"
	"zhixing-admin/services"
)

func main() {
	if err := pkgconfig.InitConfig(); err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}
	cfg := pkgconfig.GetConfig()
	gin.SetMode(cfg.Server.Mode)

	db.Init()
	if err := redis.InitRedis(config.LoadConfig()); err != nil {
		log.Printf("Redis初始化失败，分布式锁与令牌存储不可用: %v", err)
	}
	mongodb.InitMongoDB()

	engine := router.InitRouter()
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("服务启动，监听端口 %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("收到退出信号，开始优雅关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	goroutinepool.Stop()
	services.CloseAlertService()
	mongodb.Close()
	if err := redis.CloseRedis(); err != nil {
		log.Printf("关闭Redis连接失败: %v", err)
	}
	log.Print("服务已退出")
}
