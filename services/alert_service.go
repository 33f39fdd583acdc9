package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"zhixing-admin/pkg/config"
)

// 数据完整性告警类型
const (
	AlertNegativePending  = "negative_pending_commission"
	AlertPartialRecompute = "partial_recompute_failure"
)

// AlertService 数据完整性告警服务
//
// 通过 RabbitMQ 把对账异常投递给值班消费端。消息队列不可用时
// 只记日志降级，绝不阻断业务写路径。
type AlertService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

var (
	alertService *AlertService
	alertOnce    sync.Once
)

// GetAlertService 获取告警服务单例，连接失败返回 nil
func GetAlertService() *AlertService {
	alertOnce.Do(func() {
		cfg := config.GetConfig()
		svc, err := newAlertService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			log.Printf("连接 RabbitMQ 失败，数据完整性告警降级为日志: %v", err)
			return
		}
		alertService = svc
	})
	return alertService
}

func newAlertService(url, queue string) (*AlertService, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接消息队列失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开通道失败: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明队列 %s 失败: %w", queue, err)
	}

	return &AlertService{conn: conn, channel: channel, queue: queue}, nil
}

// Publish 发布一条告警消息
func (s *AlertService) Publish(alertType string, payload map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":    alertType,
		"time":    time.Now().Format("2006-01-02 15:04:05"),
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("序列化告警消息失败: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.channel.Publish("", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布告警消息失败: %w", err)
	}
	return nil
}

// Close 关闭消息队列连接
func (s *AlertService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// PublishAlert 发布告警，消息队列不可用时降级为日志
func PublishAlert(alertType string, payload map[string]interface{}) {
	svc := GetAlertService()
	if svc == nil {
		log.Printf("告警（未投递）: type=%s payload=%v", alertType, payload)
		return
	}
	if err := svc.Publish(alertType, payload); err != nil {
		log.Printf("投递告警失败: %v, type=%s payload=%v", err, alertType, payload)
	}
}

// CloseAlertService 应用退出时关闭告警服务
func CloseAlertService() {
	if alertService != nil {
		alertService.Close()
	}
}
