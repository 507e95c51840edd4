package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/events"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// TransitionInput 状态流转附加参数
type TransitionInput struct {
	ShipperID uint  // assign_shipper 必填
	Delivered *bool // complete_delivery 结果，空视为成功
}

type transitionTarget func(order *models.Order, input TransitionInput) string

func toStatus(status string) transitionTarget {
	return func(*models.Order, TransitionInput) string { return status }
}

// orderTransitions 状态 → 事件 → 目标状态，表外组合一律拒绝
var orderTransitions = map[string]map[string]transitionTarget{
	constants.OrderStatusPendingPayment: {
		constants.OrderEventPaymentSucceeded: func(order *models.Order, _ TransitionInput) string {
			if order.Source == constants.OrderSourceStaff {
				return constants.OrderStatusProcessing
			}
			return constants.OrderStatusPending
		},
		constants.OrderEventPaymentFailed:  toStatus(constants.OrderStatusPaymentFailed),
		constants.OrderEventPaymentTimeout: toStatus(constants.OrderStatusPaymentFailed),
	},
	constants.OrderStatusPending: {
		constants.OrderEventConfirm: toStatus(constants.OrderStatusProcessing),
		constants.OrderEventCancel:  toStatus(constants.OrderStatusCanceled),
	},
	constants.OrderStatusProcessing: {
		constants.OrderEventProcess: func(order *models.Order, _ TransitionInput) string {
			if order.IsPickup {
				return constants.OrderStatusReadyForPickup
			}
			return constants.OrderStatusShipped
		},
		constants.OrderEventCancel: toStatus(constants.OrderStatusCanceled),
	},
	constants.OrderStatusReadyForPickup: {
		constants.OrderEventCompletePickup: toStatus(constants.OrderStatusCompleted),
		constants.OrderEventCancel:         toStatus(constants.OrderStatusCanceled),
	},
	constants.OrderStatusShipped: {
		constants.OrderEventAssignShipper: toStatus(constants.OrderStatusAssignedShipper),
	},
	constants.OrderStatusAssignedShipper: {
		constants.OrderEventStartDelivery: toStatus(constants.OrderStatusDelivering),
	},
	constants.OrderStatusDelivering: {
		constants.OrderEventCompleteDelivery: func(_ *models.Order, input TransitionInput) string {
			if input.Delivered != nil && !*input.Delivered {
				return constants.OrderStatusFailed
			}
			return constants.OrderStatusCompleted
		},
	},
}

var knownOrderEvents = map[string]bool{
	constants.OrderEventPaymentSucceeded: true,
	constants.OrderEventPaymentFailed:    true,
	constants.OrderEventPaymentTimeout:   true,
	constants.OrderEventConfirm:          true,
	constants.OrderEventCancel:           true,
	constants.OrderEventProcess:          true,
	constants.OrderEventCompletePickup:   true,
	constants.OrderEventAssignShipper:    true,
	constants.OrderEventStartDelivery:    true,
	constants.OrderEventCompleteDelivery: true,
}

// shipperActiveStatuses 配送员占用中的订单状态
var shipperActiveStatuses = []string{
	constants.OrderStatusAssignedShipper,
	constants.OrderStatusDelivering,
}

// resolveTransition 计算目标状态
func resolveTransition(order *models.Order, event string, input TransitionInput) (string, error) {
	if target, ok := orderTransitions[order.Status][event]; ok {
		return target(order, input), nil
	}
	return "", &InvalidTransitionError{OrderID: order.ID, Status: order.Status, Event: event}
}

// OrderLifecycleService 订单状态机，所有状态变化都经由 Apply
type OrderLifecycleService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	shipperRepo  repository.ShipperRepository
	compensation *CompensationEngine
	loyalty      *LoyaltyService
	locker       OrderLocker
	scheduler    PaymentTimeoutScheduler
	notifier     OrderNotifier
	publisher    events.Publisher
}

// NewOrderLifecycleService 创建订单状态机
func NewOrderLifecycleService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	shipperRepo repository.ShipperRepository,
	compensation *CompensationEngine,
	loyalty *LoyaltyService,
	locker OrderLocker,
	scheduler PaymentTimeoutScheduler,
	notifier OrderNotifier,
	publisher events.Publisher,
) *OrderLifecycleService {
	if locker == nil {
		locker = NewLocalOrderLocker(5 * time.Second)
	}
	return &OrderLifecycleService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		shipperRepo:  shipperRepo,
		compensation: compensation,
		loyalty:      loyalty,
		locker:       locker,
		scheduler:    scheduler,
		notifier:     notifier,
		publisher:    publisher,
	}
}

// Apply 在订单锁 + 事务内：重读状态 → 校验规则 → 条件更新 → 执行副作用
func (s *OrderLifecycleService) Apply(ctx context.Context, orderID uint, event string, input TransitionInput) (order *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.lifecycle.apply", trace.WithAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("order.event", event),
	))
	defer func() { endSpan(span, err) }()

	if !knownOrderEvents[event] {
		return nil, ErrOrderStatusInvalid
	}
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if event == constants.OrderEventAssignShipper {
		shipperUnlock, err := s.lockShipper(ctx, input.ShipperID)
		if err != nil {
			return nil, err
		}
		defer shipperUnlock()
	}

	var fromStatus string
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		current, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		target, err := resolveTransition(current, event, input)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"updated_at": now}
		switch {
		case event == constants.OrderEventPaymentSucceeded:
			updates["paid_at"] = now
			current.PaidAt = &now
		case target == constants.OrderStatusCanceled:
			updates["canceled_at"] = now
			current.CanceledAt = &now
		case target == constants.OrderStatusCompleted:
			updates["completed_at"] = now
			current.CompletedAt = &now
		case target == constants.OrderStatusAssignedShipper:
			active, err := orderRepo.CountShipperActive(input.ShipperID, shipperActiveStatuses)
			if err != nil {
				return err
			}
			if active > 0 {
				return ErrShipperBusy
			}
			shipperID := input.ShipperID
			updates["shipper_id"] = shipperID
			current.ShipperID = &shipperID
		}

		ok, err := orderRepo.TransitionStatus(current.ID, current.Status, target, updates)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidTransitionError{OrderID: current.ID, Status: current.Status, Event: event}
		}
		fromStatus = current.Status
		current.Status = target
		current.UpdatedAt = now

		if err := s.runSideEffects(ctx, tx, current, fromStatus); err != nil {
			return err
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.ForOrder(ctx, order.ID, order.OrderNo).Infow("order_transition_applied",
		"event", event,
		"from", fromStatus,
		"to", order.Status,
	)
	s.afterCommit(ctx, order, fromStatus, event)
	return order, nil
}

// ApplyForCustomer 客户只能对自己的订单发起取消
func (s *OrderLifecycleService) ApplyForCustomer(ctx context.Context, customerID, orderID uint, event string) (*models.Order, error) {
	if event != constants.OrderEventCancel {
		return nil, ErrOrderStatusInvalid
	}
	owned, err := s.orderRepo.GetByIDAndCustomer(orderID, customerID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if owned == nil {
		return nil, ErrOrderNotFound
	}
	return s.Apply(ctx, orderID, event, TransitionInput{})
}

func (s *OrderLifecycleService) lockShipper(ctx context.Context, shipperID uint) (func(), error) {
	if shipperID == 0 {
		return nil, ErrShipperRequired
	}
	shipper, err := s.shipperRepo.GetByID(shipperID)
	if err != nil {
		return nil, err
	}
	if shipper == nil || !shipper.IsActive {
		return nil, ErrShipperNotFound
	}
	return s.locker.Lock(ctx, shipperLockKey(shipperID))
}

func (s *OrderLifecycleService) runSideEffects(ctx context.Context, tx *gorm.DB, order *models.Order, fromStatus string) error {
	switch order.Status {
	case constants.OrderStatusPaymentFailed, constants.OrderStatusCanceled:
		return s.compensation.Compensate(ctx, tx, order)
	case constants.OrderStatusCompleted:
		return s.completeOrder(ctx, tx, order)
	}
	if fromStatus == constants.OrderStatusPendingPayment {
		return s.clearReservedCart(tx, order)
	}
	return nil
}

// completeOrder 自提完成与配送完成共用
func (s *OrderLifecycleService) completeOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if s.loyalty == nil {
		return nil
	}
	return s.loyalty.Accrue(ctx, tx, order)
}

func (s *OrderLifecycleService) clearReservedCart(tx *gorm.DB, order *models.Order) error {
	if order.CustomerID == 0 || len(order.CartItemIDs) == 0 || s.cartRepo == nil {
		return nil
	}
	_, err := s.cartRepo.WithTx(tx).DeleteByIDs(order.CustomerID, order.CartItemIDs)
	return err
}

func (s *OrderLifecycleService) afterCommit(ctx context.Context, order *models.Order, fromStatus, event string) {
	// 超时任务自身触发时无需删除
	if fromStatus == constants.OrderStatusPendingPayment && event != constants.OrderEventPaymentTimeout && s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, order.ID); err != nil {
			logger.Warnw("payment_timeout_cancel_failed", "order_id", order.ID, "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(ctx, order)
	}
	publishOrderEvent(ctx, s.publisher, order, constants.OrderEventTypeStatusChanged, fromStatus, event)
}

// publishOrderEvent 事务提交后投递订单事件，失败只记录日志
func publishOrderEvent(ctx context.Context, publisher events.Publisher, order *models.Order, eventType, fromStatus, event string) {
	if publisher == nil || order == nil {
		return
	}
	err := publisher.PublishOrderEvent(ctx, events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		CustomerID: order.CustomerID,
		Source:     order.Source,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
		Event:      event,
		Amount:     order.FinalTotalPrice.String(),
	})
	if err != nil {
		logger.Warnw("order_event_publish_failed", "order_id", order.ID, "type", eventType, "error", err)
	}
}
