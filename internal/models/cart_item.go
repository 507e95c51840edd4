package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                               // 主键
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_cart_customer_sku" json:"customer_id"` // 客户ID
	SKUID      uint      `gorm:"column:sku_id;not null;uniqueIndex:idx_cart_customer_sku" json:"sku_id"` // SKU ID
	Quantity   int       `gorm:"not null" json:"quantity"`                           // 数量
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                            // 更新时间

	SKU *ProductSKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"` // 关联 SKU
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
