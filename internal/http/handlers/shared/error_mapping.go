package shared

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则映射错误，未命中时使用兜底码并记录原始错误
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	var stockErr *service.OutOfStockError
	if errors.As(err, &stockErr) {
		locale := i18n.ResolveLocale(c)
		msg := i18n.Sprintf(locale, "error.out_of_stock", stockErr.ProductName, stockErr.Available, stockErr.Requested)
		response.ErrorWithData(c, response.CodeConflict, msg, map[string]interface{}{
			"sku_id":    stockErr.SKUID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}
	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		locale := i18n.ResolveLocale(c)
		response.ErrorWithData(c, response.CodeConflict, i18n.T(locale, "error.order_status_invalid"), map[string]interface{}{
			"status": transitionErr.Status,
			"event":  transitionErr.Event,
		})
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatMappedErrors 合并多组映射规则
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// OrderBuildErrorRules 下单 / 预览共用的错误映射
var OrderBuildErrorRules = []MappedError{
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrPaymentMethodUnsupported, Code: response.CodeBadRequest, Key: "error.payment_method_unsupported"},
	{Target: service.ErrReceiverRequired, Code: response.CodeBadRequest, Key: "error.receiver_required"},
	{Target: service.ErrPlatformInvalid, Code: response.CodeBadRequest, Key: "error.platform_invalid"},
	{Target: service.ErrSKUNotFound, Code: response.CodeBadRequest, Key: "error.sku_not_found"},
	{Target: service.ErrCustomerNotFound, Code: response.CodeNotFound, Key: "error.customer_not_found"},
	{Target: service.ErrVoucherNotFound, Code: response.CodeBadRequest, Key: "error.voucher_not_found"},
	{Target: service.ErrVoucherNotAssigned, Code: response.CodeBadRequest, Key: "error.voucher_not_assigned"},
	{Target: service.ErrVoucherAlreadyUsed, Code: response.CodeConflict, Key: "error.voucher_already_used"},
	{Target: service.ErrVoucherNotActive, Code: response.CodeBadRequest, Key: "error.voucher_not_active"},
	{Target: service.ErrVoucherBelowMinimum, Code: response.CodeBadRequest, Key: "error.voucher_below_minimum"},
	{Target: service.ErrUpstreamPayment, Code: response.CodeBadGateway, Key: "error.payment_upstream_failed"},
}

// OrderTransitionErrorRules 状态流转的错误映射
var OrderTransitionErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrShipperRequired, Code: response.CodeBadRequest, Key: "error.shipper_required"},
	{Target: service.ErrShipperNotFound, Code: response.CodeNotFound, Key: "error.shipper_not_found"},
	{Target: service.ErrShipperBusy, Code: response.CodeConflict, Key: "error.shipper_busy"},
	{Target: service.ErrOrderBusy, Code: response.CodeConflict, Key: "error.order_busy"},
}
