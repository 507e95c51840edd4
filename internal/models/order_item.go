package models

import "time"

// OrderItem 订单项（单价为下单时快照，之后不随 SKU 调价变化）
type OrderItem struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                                // 主键
	OrderID          uint      `gorm:"index;not null" json:"order_id"`                                      // 订单ID
	SKUID            uint      `gorm:"column:sku_id;index;not null" json:"sku_id"`                          // SKU ID
	ProductID        uint      `gorm:"index;not null" json:"product_id"`                                    // 商品ID
	ProductName      string    `gorm:"type:varchar(255);not null" json:"product_name"`                      // 商品名称快照
	SKUCode          string    `gorm:"column:sku_code;type:varchar(64)" json:"sku_code"`                    // SKU 编码快照
	UnitPrice        Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`                       // 单价快照
	Quantity         int       `gorm:"not null" json:"quantity"`                                            // 数量
	PromotionID      *uint     `gorm:"index" json:"promotion_id,omitempty"`                                 // 命中的活动
	PromotionPercent Money     `gorm:"type:decimal(20,2);not null;default:0" json:"promotion_percent"`      // 活动折扣率（%）
	DiscountAmount   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`        // 活动优惠金额
	LineTotal        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"`             // 行实付金额
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                             // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
