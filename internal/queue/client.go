package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 订单状态相关的高优先级队列
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装
type Client struct {
	client        *asynq.Client
	inspector     *asynq.Inspector
	enabled       bool
	defaultQueue  string
	criticalQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue, criticalQueue: CriticalQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	return &Client{
		client:        asynq.NewClient(opt),
		inspector:     asynq.NewInspector(opt),
		enabled:       true,
		defaultQueue:  DefaultQueue,
		criticalQueue: CriticalQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.inspector != nil {
		_ = c.inspector.Close()
	}
	return c.client.Close()
}

// EnqueueOrderStatusEmail 推送订单状态邮件任务
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusNotifyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(5)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueOrderStatusPush 推送订单状态 App 推送任务
func (c *Client) EnqueueOrderStatusPush(payload OrderStatusNotifyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusPushTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(5)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// Schedule 登记支付超时任务，同一订单只保留一个
func (c *Client) Schedule(ctx context.Context, orderID uint, delay time.Duration) error {
	if !c.Enabled() {
		return errors.New("queue not enabled")
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewOrderPaymentTimeoutTask(OrderPaymentTimeoutPayload{OrderID: orderID})
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(c.criticalQueue),
		asynq.TaskID(PaymentTimeoutTaskID(orderID)),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(10),
	}
	_, err = c.client.EnqueueContext(ctx, task, options...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// Cancel 撤销尚未执行的支付超时任务，任务不存在时视为成功
func (c *Client) Cancel(ctx context.Context, orderID uint) error {
	if !c.Enabled() || c.inspector == nil {
		return nil
	}
	err := c.inspector.DeleteTask(c.criticalQueue, PaymentTimeoutTaskID(orderID))
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

// PaymentTimeoutTaskID 支付超时任务的唯一 ID
func PaymentTimeoutTaskID(orderID uint) string {
	return fmt.Sprintf("payment_timeout:%d", orderID)
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
