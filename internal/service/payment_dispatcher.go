package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/events"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const callbackRoutePrefix = "/api/v1/payments"

// DispatchResult 下单结果
type DispatchResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment,omitempty"`
	PayURL  string          `json:"pay_url,omitempty"`
}

// PaymentDispatcherOptions 支付分发配置
type PaymentDispatcherOptions struct {
	CallbackBaseURL string
	ReturnURLs      config.PlatformReturnURLs
	PaymentTimeout  time.Duration
}

// PaymentDispatcher 按支付方式落单：COD 直接生效，网关单进入待支付并登记超时
type PaymentDispatcher struct {
	orderRepo        repository.OrderRepository
	cartRepo         repository.CartRepository
	paymentRepo      repository.PaymentRepository
	promotionRepo    repository.PromotionRepository
	voucherUsageRepo repository.VoucherUsageRepository
	ledger           *InventoryLedger
	lifecycle        *OrderLifecycleService
	scheduler        PaymentTimeoutScheduler
	notifier         OrderNotifier
	publisher        events.Publisher
	gateways         map[string]PaymentGateway
	options          PaymentDispatcherOptions
}

// NewPaymentDispatcher 创建支付分发器
func NewPaymentDispatcher(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	paymentRepo repository.PaymentRepository,
	promotionRepo repository.PromotionRepository,
	voucherUsageRepo repository.VoucherUsageRepository,
	ledger *InventoryLedger,
	lifecycle *OrderLifecycleService,
	scheduler PaymentTimeoutScheduler,
	notifier OrderNotifier,
	publisher events.Publisher,
	gateways map[string]PaymentGateway,
	options PaymentDispatcherOptions,
) *PaymentDispatcher {
	if gateways == nil {
		gateways = map[string]PaymentGateway{}
	}
	if options.PaymentTimeout <= 0 {
		options.PaymentTimeout = 16 * time.Minute
	}
	options.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(options.CallbackBaseURL), "/")
	return &PaymentDispatcher{
		orderRepo:        orderRepo,
		cartRepo:         cartRepo,
		paymentRepo:      paymentRepo,
		promotionRepo:    promotionRepo,
		voucherUsageRepo: voucherUsageRepo,
		ledger:           ledger,
		lifecycle:        lifecycle,
		scheduler:        scheduler,
		notifier:         notifier,
		publisher:        publisher,
		gateways:         gateways,
		options:          options,
	}
}

// Dispatch 在一个事务内落单、扣库存、写使用记录；网关单随后发起支付
func (d *PaymentDispatcher) Dispatch(ctx context.Context, draft *OrderDraft) (result *DispatchResult, err error) {
	if draft == nil || draft.Order == nil {
		return nil, ErrOrderCreateFailed
	}
	order := draft.Order
	ctx, span := tracer.Start(ctx, "order.payment.dispatch", trace.WithAttributes(
		attribute.String("order.no", order.OrderNo),
		attribute.String("order.payment_method", order.PaymentMethod),
		attribute.String("order.source", order.Source),
	))
	defer func() { endSpan(span, err) }()

	var gateway PaymentGateway
	if order.PaymentMethod != constants.PaymentMethodCOD {
		gateway = d.gateways[order.PaymentMethod]
		if gateway == nil {
			return nil, ErrPaymentMethodUnsupported
		}
	}
	order.Status = initialOrderStatus(order)
	items := order.Items
	order.Items = nil

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := d.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		if err := d.ledger.Reserve(tx, stockLinesFromItems(order.Items)); err != nil {
			return err
		}
		if usages := buildPromotionUsages(order); len(usages) > 0 {
			if err := d.promotionRepo.WithTx(tx).CreateUsages(usages); err != nil {
				return err
			}
		}
		if draft.Voucher != nil {
			usage := &models.VoucherUsage{
				VoucherID:      draft.Voucher.ID,
				CustomerID:     order.CustomerID,
				OrderID:        order.ID,
				DiscountAmount: order.VoucherDiscount,
			}
			if err := d.voucherUsageRepo.WithTx(tx).Create(usage); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrVoucherAlreadyUsed
				}
				return err
			}
		}
		// 网关单的购物车行在支付成功后才清理
		if gateway == nil && order.CustomerID != 0 && len(order.CartItemIDs) > 0 {
			if _, err := d.cartRepo.WithTx(tx).DeleteByIDs(order.CustomerID, order.CartItemIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		order.Items = items
		if isOrderBuildError(err) {
			return nil, err
		}
		logger.Errorw("order_create_failed", "order_no", order.OrderNo, "error", err)
		return nil, ErrOrderCreateFailed
	}

	logger.ForOrder(ctx, order.ID, order.OrderNo).Infow("order_created",
		"source", order.Source,
		"status", order.Status,
		"payment_method", order.PaymentMethod,
		"final_total_price", order.FinalTotalPrice.String(),
	)
	publishOrderEvent(ctx, d.publisher, order, constants.OrderEventTypeCreated, "", "")

	if gateway == nil {
		if d.notifier != nil {
			d.notifier.NotifyOrderStatus(ctx, order)
		}
		return &DispatchResult{Order: order}, nil
	}
	return d.startGatewayPayment(ctx, gateway, order, draft.ClientIP)
}

func (d *PaymentDispatcher) startGatewayPayment(ctx context.Context, gateway PaymentGateway, order *models.Order, clientIP string) (*DispatchResult, error) {
	log := logger.ForOrder(ctx, order.ID, order.OrderNo).With("provider", gateway.Provider())

	// 0 元单（或取整后无需扣款）无需跳转网关
	charge := gateway.ChargeAmount(order.FinalTotalPrice.Decimal)
	if !charge.IsPositive() {
		settled, err := d.lifecycle.Apply(ctx, order.ID, constants.OrderEventPaymentSucceeded, TransitionInput{})
		if err != nil {
			return nil, err
		}
		log.Infow("payment_zero_amount_settled")
		return &DispatchResult{Order: settled}, nil
	}

	payment := &models.Payment{
		OrderID:  order.ID,
		Provider: gateway.Provider(),
		TxnRef:   ulid.Make().String(),
		Amount:   models.NewMoneyFromDecimal(charge),
		Status:   constants.PaymentStatusPending,
	}
	if err := d.paymentRepo.Create(payment); err != nil {
		log.Errorw("payment_record_create_failed", "error", err)
		return nil, d.failGatewayOrder(ctx, log, order, nil, "record_failed", err)
	}

	// 超时任务挂载失败则放弃本次支付
	if d.scheduler != nil {
		if err := d.scheduler.Schedule(ctx, order.ID, d.options.PaymentTimeout); err != nil {
			log.Errorw("payment_timeout_schedule_failed", "error", err)
			return nil, d.failGatewayOrder(ctx, log, order, payment, "schedule_failed", err)
		}
	}

	query := callbackQuery(order)
	created, err := gateway.Create(ctx, GatewayCreateInput{
		TxnRef:    payment.TxnRef,
		Amount:    payment.Amount.Decimal,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %s", order.OrderNo),
		ReturnURL: d.callbackURL(gateway.Provider(), "return", query),
		NotifyURL: d.callbackURL(gateway.Provider(), "callback", query),
		ClientIP:  clientIP,
		ExpireAt:  time.Now().Add(d.options.PaymentTimeout),
	})
	if err != nil {
		if isGatewayConfigError(err) {
			log.Errorw("payment_gateway_misconfigured", "error", err)
		} else {
			log.Warnw("payment_gateway_create_failed", "txn_ref", payment.TxnRef, "error", err)
		}
		return nil, d.failGatewayOrder(ctx, log, order, payment, "create_failed", err)
	}

	payment.PayURL = created.PayURL
	if err := d.paymentRepo.Update(payment); err != nil {
		log.Warnw("payment_record_update_failed", "payment_id", payment.ID, "error", err)
	}
	log.Infow("payment_gateway_created", "payment_id", payment.ID, "txn_ref", payment.TxnRef)
	return &DispatchResult{Order: order, Payment: payment, PayURL: created.PayURL}, nil
}

// failGatewayOrder 发起支付失败：支付记录落为失败，订单经状态机走 payment_failed 并补偿
func (d *PaymentDispatcher) failGatewayOrder(ctx context.Context, log *zap.SugaredLogger, order *models.Order, payment *models.Payment, reason string, cause error) error {
	if payment != nil {
		if _, err := d.paymentRepo.MarkResult(payment.ID, constants.PaymentStatusFailed, map[string]interface{}{
			"callback_code": reason,
		}); err != nil {
			log.Warnw("payment_record_mark_failed", "payment_id", payment.ID, "error", err)
		}
	}
	if _, err := d.lifecycle.Apply(ctx, order.ID, constants.OrderEventPaymentFailed, TransitionInput{}); err != nil {
		log.Errorw("payment_failed_transition_error", "error", err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamPayment, cause)
}

func (d *PaymentDispatcher) callbackURL(provider, kind string, query url.Values) string {
	return fmt.Sprintf("%s%s/%s/%s?%s", d.options.CallbackBaseURL, callbackRoutePrefix, provider, kind, query.Encode())
}

// callbackQuery 回调地址携带的订单上下文
func callbackQuery(order *models.Order) url.Values {
	query := url.Values{}
	query.Set("order_id", strconv.FormatUint(uint64(order.ID), 10))
	if order.VoucherID != nil {
		query.Set("voucher_id", strconv.FormatUint(uint64(*order.VoucherID), 10))
	}
	if len(order.CartItemIDs) > 0 {
		ids := make([]string, 0, len(order.CartItemIDs))
		for _, id := range order.CartItemIDs {
			ids = append(ids, strconv.FormatUint(uint64(id), 10))
		}
		query.Set("cart_item_ids", strings.Join(ids, ","))
	}
	query.Set("platform", order.Platform)
	return query
}

// initialOrderStatus 网关单待支付，COD 客户单待确认，COD 店员单直接处理中
func initialOrderStatus(order *models.Order) string {
	if order.PaymentMethod != constants.PaymentMethodCOD {
		return constants.OrderStatusPendingPayment
	}
	if order.Source == constants.OrderSourceStaff {
		return constants.OrderStatusProcessing
	}
	return constants.OrderStatusPending
}

func buildPromotionUsages(order *models.Order) []models.PromotionUsage {
	usages := make([]models.PromotionUsage, 0, len(order.Items))
	for _, item := range order.Items {
		if item.PromotionID == nil || !item.DiscountAmount.Decimal.IsPositive() {
			continue
		}
		usages = append(usages, models.PromotionUsage{
			PromotionID:    *item.PromotionID,
			OrderID:        order.ID,
			OrderItemID:    item.ID,
			DiscountAmount: item.DiscountAmount,
		})
	}
	return usages
}

func isOrderBuildError(err error) bool {
	return errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrVoucherRejected) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound)
}
