package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	items, err := h.CartService.ListByCustomer(customerID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.Success(c, items)
}

// UpsertCartItem 加入购物车（同 SKU 覆盖数量）
func (h *Handler) UpsertCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		CustomerID: customerID,
		SKUID:      req.SKUID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateCartItem 修改购物车数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.UpdateQuantity(customerID, itemID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"id": itemID, "quantity": req.Quantity})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(customerID, itemID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"id": itemID})
}
