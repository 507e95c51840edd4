package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
)

// PaymentTimeoutScheduler 网关支付超时任务调度（按订单 ID 可取消）
type PaymentTimeoutScheduler interface {
	Schedule(ctx context.Context, orderID uint, delay time.Duration) error
	Cancel(ctx context.Context, orderID uint) error
}

// PaymentTimeoutHandler 超时触发后的处理函数
type PaymentTimeoutHandler func(ctx context.Context, orderID uint) error

const (
	defaultLocalTimeoutRetryDelay = 30 * time.Second
	defaultLocalTimeoutMaxRetries = 3
)

// LocalTimeoutScheduler 进程内定时器实现（队列不可用时使用）。
// 处理失败时按 retryDelay 线性退避重试，最多 maxRetries 次。
type LocalTimeoutScheduler struct {
	mu         sync.Mutex
	timers     map[uint]*time.Timer
	handler    PaymentTimeoutHandler
	retryDelay time.Duration
	maxRetries int
	stopped    bool
}

// NewLocalTimeoutScheduler 创建进程内超时调度器
func NewLocalTimeoutScheduler() *LocalTimeoutScheduler {
	return &LocalTimeoutScheduler{
		timers:     make(map[uint]*time.Timer),
		retryDelay: defaultLocalTimeoutRetryDelay,
		maxRetries: defaultLocalTimeoutMaxRetries,
	}
}

// SetHandler 注入超时处理函数
func (s *LocalTimeoutScheduler) SetHandler(handler PaymentTimeoutHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Schedule 同一订单重复调度时保留已有定时器
func (s *LocalTimeoutScheduler) Schedule(_ context.Context, orderID uint, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[orderID]; ok {
		return nil
	}
	s.arm(orderID, delay, 0)
	return nil
}

// arm 调用方需持有 mu
func (s *LocalTimeoutScheduler) arm(orderID uint, delay time.Duration, attempt int) {
	s.timers[orderID] = time.AfterFunc(delay, func() {
		s.fire(orderID, attempt)
	})
}

// Cancel 取消订单的超时任务
func (s *LocalTimeoutScheduler) Cancel(_ context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[orderID]; ok {
		timer.Stop()
		delete(s.timers, orderID)
	}
	return nil
}

// Pending 当前等待中的任务数
func (s *LocalTimeoutScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop 停止全部定时器
func (s *LocalTimeoutScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *LocalTimeoutScheduler) fire(orderID uint, attempt int) {
	s.mu.Lock()
	delete(s.timers, orderID)
	handler := s.handler
	s.mu.Unlock()
	if handler == nil {
		logger.Warnw("payment_timeout_handler_missing", "order_id", orderID)
		return
	}
	err := handler(context.Background(), orderID)
	if err == nil {
		return
	}
	if attempt >= s.maxRetries {
		logger.Errorw("payment_timeout_local_failed", "order_id", orderID, "attempts", attempt+1, "error", err)
		return
	}

	delay := s.retryDelay * time.Duration(attempt+1)
	s.mu.Lock()
	defer s.mu.Unlock()
	// 已停止或期间被重新调度时不再补挂
	if s.stopped {
		return
	}
	if _, ok := s.timers[orderID]; ok {
		return
	}
	logger.Warnw("payment_timeout_local_retry", "order_id", orderID, "attempt", attempt+1, "retry_in", delay, "error", err)
	s.arm(orderID, delay, attempt+1)
}

// RevokeUnpaidOrder 超时撤销：订单已离开待支付或不存在时视为成功
func RevokeUnpaidOrder(ctx context.Context, lifecycle *OrderLifecycleService, orderID uint) error {
	_, err := lifecycle.Apply(ctx, orderID, constants.OrderEventPaymentTimeout, TransitionInput{})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidTransition):
		logger.Infow("payment_timeout_skip_not_pending", "order_id", orderID)
		return nil
	case errors.Is(err, ErrOrderNotFound):
		logger.Warnw("payment_timeout_skip_not_found", "order_id", orderID)
		return nil
	default:
		return err
	}
}
