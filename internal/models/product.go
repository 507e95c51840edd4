package models

import (
	"time"

	"gorm.io/gorm"
)

// Brand 品牌
type Brand struct {
	ID        uint           `gorm:"primarykey" json:"id"`    // 主键
	Name      string         `gorm:"not null" json:"name"`    // 名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Brand) TableName() string {
	return "brands"
}

// Category 商品分类
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`    // 主键
	Name      string         `gorm:"not null" json:"name"`    // 名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品
type Product struct {
	ID         uint           `gorm:"primarykey" json:"id"`                        // 主键
	Name       string         `gorm:"not null" json:"name"`                        // 名称
	BrandID    uint           `gorm:"index;not null;default:0" json:"brand_id"`    // 品牌ID
	CategoryID uint           `gorm:"index;not null;default:0" json:"category_id"` // 分类ID
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`      // 是否上架
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
