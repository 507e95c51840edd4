package service

import (
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ID          uint         `json:"id"`
	SKUID       uint         `json:"sku_id"`
	SKUCode     string       `json:"sku_code"`
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   models.Money `json:"unit_price"`
	Stock       int          `json:"stock"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	CustomerID uint
	SKUID      uint
	Quantity   int
}

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	skuRepo  repository.ProductSKURepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, skuRepo repository.ProductSKURepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		skuRepo:  skuRepo,
	}
}

// ListByCustomer 获取客户购物车，已下架的 SKU 顺带清理
func (s *CartService) ListByCustomer(customerID uint) ([]CartItemDetail, error) {
	if customerID == 0 {
		return nil, ErrCustomerNotFound
	}
	items, err := s.cartRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, ErrCartFetchFailed
	}
	details := make([]CartItemDetail, 0, len(items))
	stale := make([]uint, 0)
	for _, item := range items {
		sku := item.SKU
		if sku == nil || !sku.IsActive || sku.Product == nil || !sku.Product.IsActive {
			stale = append(stale, item.ID)
			continue
		}
		details = append(details, CartItemDetail{
			ID:          item.ID,
			SKUID:       sku.ID,
			SKUCode:     sku.SKUCode,
			ProductID:   sku.ProductID,
			ProductName: sku.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   sku.PriceAmount,
			Stock:       sku.Stock,
		})
	}
	if len(stale) > 0 {
		if _, err := s.cartRepo.DeleteByIDs(customerID, stale); err != nil {
			logger.Warnw("cart_stale_cleanup_failed", "customer_id", customerID, "error", err)
		}
	}
	return details, nil
}

// UpsertItem 添加购物车项，同一 SKU 数量累加
func (s *CartService) UpsertItem(input UpsertCartItemInput) (*models.CartItem, error) {
	if input.CustomerID == 0 || input.SKUID == 0 || input.Quantity <= 0 {
		return nil, ErrInvalidOrderItem
	}
	sku, err := s.skuRepo.GetByID(input.SKUID)
	if err != nil {
		return nil, ErrCartFetchFailed
	}
	if sku == nil || !sku.IsActive || sku.Product == nil || !sku.Product.IsActive {
		return nil, ErrSKUNotFound
	}

	now := time.Now()
	item := &models.CartItem{
		CustomerID: input.CustomerID,
		SKUID:      input.SKUID,
		Quantity:   input.Quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, ErrCartUpdateFailed
	}
	return item, nil
}

// UpdateQuantity 修改购物车项数量
func (s *CartService) UpdateQuantity(customerID, itemID uint, quantity int) error {
	if customerID == 0 || itemID == 0 || quantity <= 0 {
		return ErrInvalidOrderItem
	}
	affected, err := s.cartRepo.UpdateQuantity(customerID, itemID, quantity)
	if err != nil {
		return ErrCartUpdateFailed
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(customerID, itemID uint) error {
	if customerID == 0 || itemID == 0 {
		return ErrInvalidOrderItem
	}
	affected, err := s.cartRepo.DeleteByIDs(customerID, []uint{itemID})
	if err != nil {
		return ErrCartUpdateFailed
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}
