package worker

import (
	"context"
	"encoding/json"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPaymentTimeout, c.handleOrderPaymentTimeout)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskOrderStatusPush, c.handleOrderStatusPush)
}

func (c *Consumer) handleOrderPaymentTimeout(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_timeout_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPaymentTimeoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_timeout_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_payment_timeout_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.LifecycleService == nil {
		logger.Warnw("worker_payment_timeout_skip_lifecycle_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := service.RevokeUnpaidOrder(ctx, c.LifecycleService, payload.OrderID); err != nil {
		// 锁冲突或数据库错误交给 asynq 重试
		logger.Warnw("worker_payment_timeout_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	payload, ok, err := decodeStatusPayload(task, "worker_order_status_email")
	if !ok || err != nil {
		return err
	}
	if c == nil || c.NotificationService == nil {
		logger.Warnw("worker_order_status_email_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.NotificationService.SendOrderStatusEmail(ctx, payload.OrderID, payload.Status); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", payload.OrderID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusPush(ctx context.Context, task *asynq.Task) error {
	payload, ok, err := decodeStatusPayload(task, "worker_order_status_push")
	if !ok || err != nil {
		return err
	}
	if c == nil || c.NotificationService == nil {
		logger.Warnw("worker_order_status_push_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.NotificationService.SendOrderStatusPush(ctx, payload.OrderID, payload.Status); err != nil {
		logger.Warnw("worker_order_status_push_send_failed",
			"order_id", payload.OrderID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	return nil
}

// decodeStatusPayload 解析状态通知载荷，ok=false 表示跳过
func decodeStatusPayload(task *asynq.Task, event string) (queue.OrderStatusNotifyPayload, bool, error) {
	var payload queue.OrderStatusNotifyPayload
	if task == nil {
		logger.Debugw(event+"_skip_nil_task")
		return payload, false, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw(event+"_unmarshal_failed", "error", err)
		return payload, false, err
	}
	if payload.OrderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", payload.OrderID)
		return payload, false, nil
	}
	return payload, true, nil
}
