package worker

import (
	"context"
	"testing"

	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestDecodeStatusPayload(t *testing.T) {
	task, err := queue.NewOrderStatusEmailTask(queue.OrderStatusNotifyPayload{OrderID: 12, Status: "processing"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	payload, ok, err := decodeStatusPayload(task, "test")
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if payload.OrderID != 12 || payload.Status != "processing" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeStatusPayloadSkipsZeroOrder(t *testing.T) {
	task := asynq.NewTask(queue.TaskOrderStatusPush, []byte(`{"order_id":0}`))
	_, ok, err := decodeStatusPayload(task, "test")
	if ok || err != nil {
		t.Fatalf("zero order should be skipped, ok=%v err=%v", ok, err)
	}
}

func TestDecodeStatusPayloadRejectsMalformed(t *testing.T) {
	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte(`{`))
	if _, _, err := decodeStatusPayload(task, "test"); err == nil {
		t.Fatalf("malformed payload should return error")
	}
}

func TestPaymentTimeoutHandlerWithoutLifecycle(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewOrderPaymentTimeoutTask(queue.OrderPaymentTimeoutPayload{OrderID: 5})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderPaymentTimeout(context.Background(), task); err != nil {
		t.Fatalf("missing lifecycle should be skipped: %v", err)
	}
}
