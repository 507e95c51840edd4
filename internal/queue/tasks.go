package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderStatusPush 订单状态推送任务
	TaskOrderStatusPush = constants.TaskOrderStatusPush
	// TaskOrderPaymentTimeout 网关支付超时任务
	TaskOrderPaymentTimeout = constants.TaskOrderPaymentTimeout
)

// OrderStatusNotifyPayload 订单状态通知任务载荷
type OrderStatusNotifyPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderPaymentTimeoutPayload 支付超时任务载荷
type OrderPaymentTimeoutPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewOrderStatusPushTask 创建订单状态推送任务
func NewOrderStatusPushTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusPush, body), nil
}

// NewOrderPaymentTimeoutTask 创建支付超时任务
func NewOrderPaymentTimeoutTask(payload OrderPaymentTimeoutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaymentTimeout, body), nil
}
