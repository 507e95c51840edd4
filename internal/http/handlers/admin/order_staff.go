package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// StaffOrderItemRequest 代客下单商品
type StaffOrderItemRequest struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// StaffReceiverRequest 收货 / 自提联系人
type StaffReceiverRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// StaffOrderRequest 代客下单请求，customer_id 为空表示散客
type StaffOrderRequest struct {
	CustomerID    uint                    `json:"customer_id"`
	Items         []StaffOrderItemRequest `json:"items" binding:"required"`
	VoucherID     *uint                   `json:"voucher_id"`
	PaymentMethod string                  `json:"payment_method" binding:"required"`
	Platform      string                  `json:"platform"`
	IsPickup      bool                    `json:"is_pickup"`
	Receiver      StaffReceiverRequest    `json:"receiver"`
}

// AssignShipperRequest 指派配送员请求
type AssignShipperRequest struct {
	ShipperID uint `json:"shipper_id" binding:"required"`
}

// CompleteDeliveryRequest 配送结果，delivered=false 表示配送失败
type CompleteDeliveryRequest struct {
	Delivered *bool `json:"delivered"`
}

func (r StaffOrderRequest) toInput(staffID uint, clientIP string) service.StaffOrderInput {
	items := make([]service.StaffOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.StaffOrderItem{SKUID: item.SKUID, Quantity: item.Quantity})
	}
	platform := strings.TrimSpace(r.Platform)
	if platform == "" {
		platform = constants.PlatformStaff
	}
	return service.StaffOrderInput{
		StaffID:       staffID,
		CustomerID:    r.CustomerID,
		Items:         items,
		VoucherID:     r.VoucherID,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Platform:      platform,
		IsPickup:      r.IsPickup,
		Receiver:      service.ReceiverInput(r.Receiver),
		ClientIP:      clientIP,
	}
}

// PreviewStaffOrder 代客下单金额预览
func (h *Handler) PreviewStaffOrder(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req StaffOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	preview, err := h.OrderService.PreviewStaffOrder(req.toInput(staffID, c.ClientIP()))
	if err != nil {
		respondOrderBuildError(c, err)
		return
	}
	response.Success(c, preview)
}

// CreateStaffOrder 代客下单
func (h *Handler) CreateStaffOrder(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req StaffOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.OrderService.CreateStaffOrder(c.Request.Context(), req.toInput(staffID, c.ClientIP()))
	if err != nil {
		respondOrderBuildError(c, err)
		return
	}
	requestLog(c).Infow("staff_order_created",
		"staff_id", staffID,
		"order_id", result.Order.ID,
		"order_no", result.Order.OrderNo,
	)
	response.Success(c, result)
}

// ListStaffOrders 店员订单列表
func (h *Handler) ListStaffOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var customerID, shipperID uint
	if parsed, err := strconv.ParseUint(strings.TrimSpace(c.Query("customer_id")), 10, 64); err == nil {
		customerID = uint(parsed)
	}
	if parsed, err := strconv.ParseUint(strings.TrimSpace(c.Query("shipper_id")), 10, 64); err == nil {
		shipperID = uint(parsed)
	}

	orders, total, err := h.OrderService.ListStaffOrders(service.OrderListQuery{
		Page:          page,
		PageSize:      pageSize,
		CustomerID:    customerID,
		Source:        strings.TrimSpace(c.Query("source")),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		ShipperID:     shipperID,
		Keyword:       strings.TrimSpace(c.Query("keyword")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetStaffOrder 店员订单详情（:id 为数字 ID 或订单号）
func (h *Handler) GetStaffOrder(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	var (
		order *models.Order
		err   error
	)
	if id, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil && id > 0 {
		order, err = h.OrderService.GetStaffOrder(uint(id))
	} else {
		order, err = h.OrderService.GetStaffOrderByNo(raw)
	}
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

// ListShippers 在岗配送员
func (h *Handler) ListShippers(c *gin.Context) {
	shippers, err := h.ShipperRepo.ListActive()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, shippers)
}

// OrderEventHandler 生成单个订单事件的处理函数
func (h *Handler) OrderEventHandler(event string) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffID, ok := getStaffID(c)
		if !ok {
			return
		}
		orderID, ok := parseOrderID(c)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		input, ok := bindTransitionInput(c, event)
		if !ok {
			return
		}
		order, err := h.LifecycleService.Apply(c.Request.Context(), orderID, event, input)
		if err != nil {
			respondTransitionError(c, err)
			return
		}
		requestLog(c).Infow("staff_order_event_applied",
			"staff_id", staffID,
			"order_id", order.ID,
			"event", event,
			"status", order.Status,
		)
		response.Success(c, order)
	}
}

func bindTransitionInput(c *gin.Context, event string) (service.TransitionInput, bool) {
	var input service.TransitionInput
	switch event {
	case constants.OrderEventAssignShipper:
		var req AssignShipperRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.shipper_required", nil)
			return input, false
		}
		input.ShipperID = req.ShipperID
	case constants.OrderEventCompleteDelivery:
		var req CompleteDeliveryRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, response.CodeBadRequest, "error.bad_request", err)
				return input, false
			}
		}
		input.Delivered = req.Delivered
	}
	return input, true
}

// parseTimeNullable 支持 RFC3339 与日期格式
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
