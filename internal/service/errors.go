package service

import (
	"errors"
	"fmt"
)

// 错误分类
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// 参数校验错误
var (
	ErrEmptyCart                = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrInvalidOrderItem         = fmt.Errorf("%w: invalid order item", ErrValidation)
	ErrPaymentMethodUnsupported = fmt.Errorf("%w: payment method unsupported", ErrValidation)
	ErrReceiverRequired         = fmt.Errorf("%w: receiver is required", ErrValidation)
	ErrPlatformInvalid          = fmt.Errorf("%w: platform invalid", ErrValidation)
	ErrShipperRequired          = fmt.Errorf("%w: shipper is required", ErrValidation)
	ErrOrderStatusInvalid       = fmt.Errorf("%w: order event invalid", ErrValidation)
)

// 资源不存在
var (
	ErrOrderNotFound    = fmt.Errorf("%w: order", ErrNotFound)
	ErrVoucherNotFound  = fmt.Errorf("%w: voucher", ErrNotFound)
	ErrSKUNotFound      = fmt.Errorf("%w: sku", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("%w: customer", ErrNotFound)
	ErrShipperNotFound  = fmt.Errorf("%w: shipper", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("%w: cart item", ErrNotFound)
)

// 库存 / 优惠券 / 状态机
var (
	ErrOutOfStock          = errors.New("out of stock")
	ErrVoucherRejected     = errors.New("voucher rejected")
	ErrVoucherNotAssigned  = fmt.Errorf("%w: not assigned", ErrVoucherRejected)
	ErrVoucherAlreadyUsed  = fmt.Errorf("%w: already used", ErrVoucherRejected)
	ErrVoucherNotActive    = fmt.Errorf("%w: not active", ErrVoucherRejected)
	ErrVoucherBelowMinimum = fmt.Errorf("%w: below minimum", ErrVoucherRejected)
	ErrInvalidTransition   = errors.New("invalid order transition")
	ErrShipperBusy         = errors.New("shipper has an active delivery")
	ErrOrderBusy           = errors.New("order is being processed")
)

// 支付
var (
	ErrUpstreamPayment        = errors.New("upstream payment failed")
	ErrPaymentCallbackInvalid = errors.New("payment callback invalid")
)

// 内部错误
var (
	ErrOrderFetchFailed  = errors.New("order fetch failed")
	ErrOrderCreateFailed = errors.New("order create failed")
	ErrOrderUpdateFailed = errors.New("order update failed")
	ErrCartFetchFailed   = errors.New("cart fetch failed")
	ErrCartUpdateFailed  = errors.New("cart update failed")
)

// 通知
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrPushServiceDisabled       = errors.New("push service disabled")
	ErrPushTokenMissing          = errors.New("push device token missing")
)

// OutOfStockError 库存不足（携带商品与数量）
type OutOfStockError struct {
	SKUID       uint
	ProductName string
	Available   int
	Requested   int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: %s available=%d requested=%d", e.ProductName, e.Available, e.Requested)
}

func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}

// InvalidTransitionError 当前状态不接受该事件
type InvalidTransitionError struct {
	OrderID uint
	Status  string
	Event   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition: order=%d status=%s event=%s", e.OrderID, e.Status, e.Event)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
