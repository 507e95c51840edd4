package public

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ReceiverRequest 收货信息
type ReceiverRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// CreateOrderRequest 顾客下单请求（商品来自购物车）
type CreateOrderRequest struct {
	CartItemIDs   []uint          `json:"cart_item_ids" binding:"required"`
	VoucherID     *uint           `json:"voucher_id"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Platform      string          `json:"platform"`
	IsPickup      bool            `json:"is_pickup"`
	Receiver      ReceiverRequest `json:"receiver"`
}

func (r CreateOrderRequest) toInput(customerID uint, clientIP string) service.CustomerOrderInput {
	return service.CustomerOrderInput{
		CustomerID:    customerID,
		CartItemIDs:   r.CartItemIDs,
		VoucherID:     r.VoucherID,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Platform:      strings.TrimSpace(r.Platform),
		IsPickup:      r.IsPickup,
		Receiver:      service.ReceiverInput(r.Receiver),
		ClientIP:      clientIP,
	}
}

// PreviewOrder 订单金额预览（不落库）
func (h *Handler) PreviewOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	preview, err := h.OrderService.PreviewCustomerOrder(req.toInput(customerID, c.ClientIP()))
	if err != nil {
		respondOrderBuildError(c, err)
		return
	}
	response.Success(c, preview)
}

// CreateOrder 创建订单，网关支付时返回支付链接
func (h *Handler) CreateOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Platform == "" {
		req.Platform = constants.PlatformWeb
	}
	result, err := h.OrderService.CreateCustomerOrder(c.Request.Context(), req.toInput(customerID, c.ClientIP()))
	if err != nil {
		respondOrderBuildError(c, err)
		return
	}
	requestLog(c).Infow("customer_order_created",
		"order_id", result.Order.ID,
		"order_no", result.Order.OrderNo,
		"payment_method", result.Order.PaymentMethod,
	)
	response.Success(c, result)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)

	orders, total, err := h.OrderService.ListCustomerOrders(customerID, service.OrderListQuery{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetCustomerOrder(customerID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 顾客取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.LifecycleService.ApplyForCustomer(c.Request.Context(), customerID, orderID, constants.OrderEventCancel)
	if err != nil {
		respondCustomerCancelError(c, err)
		return
	}
	response.Success(c, order)
}
