package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductSKU 商品 SKU（价格 + 可用库存）
type ProductSKU struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                                    // 主键
	ProductID   uint           `gorm:"not null;index" json:"product_id"`                                        // 商品ID
	SKUCode     string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex" json:"sku_code"`   // SKU编码
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`               // 售价
	Stock       int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`                        // 可用库存
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                                     // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                                 // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                          // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductSKU) TableName() string {
	return "product_skus"
}
