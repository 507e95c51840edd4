package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

const callbackBodyLimit = 64 << 10

// vnpayIPNAck VNPay IPN 应答格式
type vnpayIPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// PaymentCallback 网关服务端通知（IPN）
func (h *Handler) PaymentCallback(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	body, err := readCallbackBody(c)
	if err != nil {
		requestLog(c).Warnw("payment_callback_read_body_failed", "provider", provider, "error", err)
		c.Status(http.StatusBadRequest)
		return
	}
	requestLog(c).Infow("payment_callback_received",
		"provider", provider,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
	)
	result, err := h.PaymentDispatcher.HandleCallback(c.Request.Context(), provider, c.Request.URL.Query(), body)
	switch provider {
	case constants.PaymentMethodVNPay:
		c.JSON(http.StatusOK, vnpayAck(result, err))
	case constants.PaymentMethodMoMo:
		c.Status(momoAckStatus(result, err))
	default:
		respondError(c, response.CodeBadRequest, "error.payment_method_unsupported", nil)
	}
}

// PaymentReturn 浏览器支付完成跳转，按下单平台重定向
func (h *Handler) PaymentReturn(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	result, err := h.PaymentDispatcher.HandleCallback(c.Request.Context(), provider, c.Request.URL.Query(), nil)
	if result == nil {
		requestLog(c).Warnw("payment_return_failed", "provider", provider, "error", err)
		switch {
		case errors.Is(err, service.ErrPaymentMethodUnsupported):
			respondError(c, response.CodeBadRequest, "error.payment_method_unsupported", nil)
		case errors.Is(err, service.ErrPaymentCallbackInvalid):
			respondError(c, response.CodeBadRequest, "error.payment_callback_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_update_failed", err)
		}
		return
	}
	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}
	response.Success(c, gin.H{
		"order_id": result.Order.ID,
		"order_no": result.Order.OrderNo,
		"status":   result.Order.Status,
		"success":  result.Success,
	})
}

func readCallbackBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Method == http.MethodGet {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, callbackBodyLimit))
}

// vnpayAck 订单已处理（含失败结果）回 00，重复通知回 02
func vnpayAck(result *service.CallbackResult, err error) vnpayIPNAck {
	switch {
	case result != nil && errors.Is(err, service.ErrPaymentCallbackInvalid):
		return vnpayIPNAck{RspCode: constants.VNPayRspChecksum, Message: "Invalid Checksum"}
	case result != nil && result.Duplicate:
		return vnpayIPNAck{RspCode: constants.VNPayRspOrderDone, Message: "Order already confirmed"}
	case result != nil:
		return vnpayIPNAck{RspCode: constants.VNPayRspSuccess, Message: "Confirm Success"}
	case errors.Is(err, service.ErrPaymentCallbackInvalid):
		return vnpayIPNAck{RspCode: constants.VNPayRspChecksum, Message: "Invalid Checksum"}
	case errors.Is(err, service.ErrOrderNotFound):
		return vnpayIPNAck{RspCode: constants.VNPayRspNotFound, Message: "Order not found"}
	default:
		return vnpayIPNAck{RspCode: constants.VNPayRspUnknown, Message: "Unknown error"}
	}
}

// momoAckStatus MoMo 只看 HTTP 状态码，204 视为已接收
func momoAckStatus(result *service.CallbackResult, err error) int {
	switch {
	case result != nil && !errors.Is(err, service.ErrPaymentCallbackInvalid):
		return http.StatusNoContent
	case result != nil, errors.Is(err, service.ErrPaymentCallbackInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
