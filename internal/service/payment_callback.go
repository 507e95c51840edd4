package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CallbackResult 回调处理结果
type CallbackResult struct {
	Order       *models.Order
	Payment     *models.Payment
	Success     bool
	Duplicate   bool
	RedirectURL string
}

// HandleCallback 处理网关回调（IPN 与浏览器跳转共用）。
// 验签失败但能定位订单时仍走失败流转，并把验签错误一并返回。
func (d *PaymentDispatcher) HandleCallback(ctx context.Context, provider string, query url.Values, body []byte) (result *CallbackResult, err error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	ctx, span := tracer.Start(ctx, "order.payment.callback", trace.WithAttributes(
		attribute.String("payment.provider", provider),
	))
	defer func() { endSpan(span, err) }()

	gateway := d.gateways[provider]
	if gateway == nil {
		return nil, ErrPaymentMethodUnsupported
	}
	callback, verifyErr := gateway.ParseCallback(query, body)
	if callback == nil {
		logger.Warnw("payment_callback_parse_failed", "provider", provider, "error", verifyErr)
		return nil, verifyErr
	}

	log := logger.Ctx(ctx).With("provider", provider, "txn_ref", callback.TxnRef, "callback_code", callback.Code)
	payment, err := d.paymentRepo.GetByTxnRef(callback.TxnRef)
	if err != nil {
		log.Errorw("payment_callback_payment_fetch_failed", "error", err)
		return nil, ErrOrderFetchFailed
	}
	orderID := callbackOrderID(payment, query)
	if orderID == 0 {
		log.Warnw("payment_callback_order_unidentified")
		return nil, ErrPaymentCallbackInvalid
	}
	log = log.With("order_id", orderID)

	success := callback.Success
	if verifyErr != nil {
		log.Warnw("payment_callback_signature_invalid", "error", verifyErr)
		success = false
	}
	if payment != nil && success && !callback.Amount.IsZero() && !callback.Amount.Equal(payment.Amount.Decimal) {
		log.Warnw("payment_callback_amount_mismatch",
			"stored_amount", payment.Amount.String(),
			"callback_amount", callback.Amount.String(),
		)
		success = false
	}

	if payment != nil {
		status := constants.PaymentStatusFailed
		if success {
			status = constants.PaymentStatusSuccess
		}
		now := time.Now()
		marked, err := d.paymentRepo.MarkResult(payment.ID, status, map[string]interface{}{
			"provider_ref":  callback.ProviderRef,
			"callback_code": callback.Code,
			"raw_callback":  models.JSON(callback.Raw),
			"callback_at":   now,
		})
		if err != nil {
			log.Errorw("payment_callback_mark_failed", "payment_id", payment.ID, "error", err)
			return nil, ErrOrderUpdateFailed
		}
		if !marked {
			log.Infow("payment_callback_duplicate", "payment_id", payment.ID, "status", payment.Status)
			order, err := d.orderRepo.GetByID(orderID)
			if err != nil {
				return nil, ErrOrderFetchFailed
			}
			return d.callbackResult(order, payment, payment.Status == constants.PaymentStatusSuccess, true, query), verifyErr
		}
		payment.Status = status
		payment.CallbackAt = &now
	}

	event := constants.OrderEventPaymentFailed
	if success {
		event = constants.OrderEventPaymentSucceeded
	}
	order, err := d.lifecycle.Apply(ctx, orderID, event, TransitionInput{})
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			log.Errorw("payment_callback_transition_failed", "event", event, "error", err)
			return nil, err
		}
		// 超时已先行处理或订单已不在待支付
		log.Warnw("payment_callback_order_not_pending", "event", event, "error", err)
		order, err = d.orderRepo.GetByID(orderID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
	}
	log.Infow("payment_callback_processed", "success", success)
	return d.callbackResult(order, payment, success, false, query), verifyErr
}

func (d *PaymentDispatcher) callbackResult(order *models.Order, payment *models.Payment, success, duplicate bool, query url.Values) *CallbackResult {
	platform := strings.TrimSpace(query.Get("platform"))
	if order != nil && order.Platform != "" {
		platform = order.Platform
	}
	return &CallbackResult{
		Order:       order,
		Payment:     payment,
		Success:     success,
		Duplicate:   duplicate,
		RedirectURL: d.platformReturnURL(platform, order, success),
	}
}

// platformReturnURL 按下单平台跳转：网页商城、店员后台或移动端 deep link
func (d *PaymentDispatcher) platformReturnURL(platform string, order *models.Order, success bool) string {
	var base string
	switch platform {
	case constants.PlatformStaff:
		base = d.options.ReturnURLs.Staff
	case constants.PlatformMobile:
		base = d.options.ReturnURLs.Mobile
	default:
		base = d.options.ReturnURLs.Web
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	values := url.Values{}
	if order != nil {
		values.Set("order_id", strconv.FormatUint(uint64(order.ID), 10))
		values.Set("order_no", order.OrderNo)
	}
	if success {
		values.Set("status", constants.PaymentStatusSuccess)
	} else {
		values.Set("status", constants.PaymentStatusFailed)
	}
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + values.Encode()
}

// callbackOrderID 优先以支付记录定位订单，回退到回调地址携带的 order_id
func callbackOrderID(payment *models.Payment, query url.Values) uint {
	if payment != nil && payment.OrderID != 0 {
		return payment.OrderID
	}
	raw := strings.TrimSpace(query.Get("order_id"))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
