package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"golang.org/x/sync/errgroup"
)

const inlineNotifyTimeout = 30 * time.Second

// OrderNotifier 订单状态通知
type OrderNotifier interface {
	NotifyOrderStatus(ctx context.Context, order *models.Order)
}

// NotificationService 订单状态邮件 + 推送
type NotificationService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	emailService *EmailService
	pushService  *PushService
	queueClient  *queue.Client
	locale       string
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	emailService *EmailService,
	pushService *PushService,
	queueClient *queue.Client,
) *NotificationService {
	return &NotificationService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		emailService: emailService,
		pushService:  pushService,
		queueClient:  queueClient,
		locale:       i18n.DefaultLocale,
	}
}

// NotifyOrderStatus 队列可用时入队，否则后台直接发送，不阻塞调用方
func (s *NotificationService) NotifyOrderStatus(ctx context.Context, order *models.Order) {
	if s == nil || order == nil || order.ID == 0 {
		return
	}
	payload := queue.OrderStatusNotifyPayload{OrderID: order.ID, Status: order.Status}
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderStatusEmail(payload); err != nil {
			logger.Warnw("order_enqueue_status_email_failed", "order_id", order.ID, "status", order.Status, "error", err)
		}
		if err := s.queueClient.EnqueueOrderStatusPush(payload); err != nil {
			logger.Warnw("order_enqueue_status_push_failed", "order_id", order.ID, "status", order.Status, "error", err)
		}
		return
	}
	go func() {
		inlineCtx, cancel := context.WithTimeout(context.Background(), inlineNotifyTimeout)
		defer cancel()
		if err := s.DeliverOrderStatus(inlineCtx, payload.OrderID, payload.Status); err != nil {
			logger.Warnw("order_status_notify_inline_failed", "order_id", payload.OrderID, "status", payload.Status, "error", err)
		}
	}()
}

// DeliverOrderStatus 并发发送邮件与推送
func (s *NotificationService) DeliverOrderStatus(ctx context.Context, orderID uint, status string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.SendOrderStatusEmail(gctx, orderID, status)
	})
	g.Go(func() error {
		return s.SendOrderStatusPush(gctx, orderID, status)
	})
	return g.Wait()
}

// SendOrderStatusEmail 发送订单状态邮件（无收件人或服务未启用时跳过）
func (s *NotificationService) SendOrderStatusEmail(ctx context.Context, orderID uint, status string) error {
	order, err := s.loadOrder(orderID)
	if err != nil || order == nil {
		return err
	}
	receiver := strings.TrimSpace(order.ReceiverEmail)
	if receiver == "" && order.CustomerID != 0 {
		if customer, err := s.customerRepo.GetByID(order.CustomerID); err == nil && customer != nil {
			receiver = strings.TrimSpace(customer.Email)
		}
	}
	if receiver == "" {
		logger.Debugw("order_status_email_skip_no_receiver", "order_id", orderID)
		return nil
	}
	err = s.emailService.SendOrderStatusEmail(ctx, receiver, OrderStatusEmailInput{
		OrderNo:  order.OrderNo,
		Status:   resolveNotifyStatus(order, status),
		Amount:   order.FinalTotalPrice,
		IsPickup: order.IsPickup,
		Items:    order.Items,
	}, s.locale)
	if errors.Is(err, ErrEmailServiceDisabled) || errors.Is(err, ErrEmailServiceNotConfigured) || errors.Is(err, ErrInvalidEmail) {
		logger.Debugw("order_status_email_skip", "order_id", orderID, "reason", err.Error())
		return nil
	}
	return err
}

// SendOrderStatusPush 推送订单状态（无设备令牌或服务未启用时跳过）
func (s *NotificationService) SendOrderStatusPush(ctx context.Context, orderID uint, status string) error {
	if !s.pushService.Enabled() {
		return nil
	}
	order, err := s.loadOrder(orderID)
	if err != nil || order == nil || order.CustomerID == 0 {
		return err
	}
	customer, err := s.customerRepo.GetByID(order.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil || strings.TrimSpace(customer.DeviceToken) == "" {
		return nil
	}
	msg := buildOrderStatusPush(customer.DeviceToken, order.OrderNo, order.ID, resolveNotifyStatus(order, status), s.locale)
	return s.pushService.Send(ctx, msg)
}

func (s *NotificationService) loadOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		logger.Warnw("order_status_notify_order_missing", "order_id", orderID)
	}
	return order, nil
}

func resolveNotifyStatus(order *models.Order, status string) string {
	if status = strings.TrimSpace(status); status != "" {
		return status
	}
	return order.Status
}
