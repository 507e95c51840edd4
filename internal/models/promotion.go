package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 商品活动折扣
type Promotion struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                       // 主键
	Name            string         `gorm:"not null" json:"name"`                                       // 名称
	DiscountPercent Money          `gorm:"type:decimal(20,2);not null" json:"discount_percent"`        // 折扣百分比
	Priority        *int           `gorm:"index" json:"priority"`                                      // 优先级（越小越优先，空表示最低）
	ScopeType       string         `gorm:"type:varchar(20);not null;index" json:"scope_type"`          // 适用范围（all/scoped）
	StartsAt        *time.Time     `gorm:"index" json:"starts_at"`                                     // 生效时间
	EndsAt          *time.Time     `gorm:"index" json:"ends_at"`                                       // 失效时间
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`                     // 是否启用
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Targets []PromotionTarget `gorm:"foreignKey:PromotionID" json:"targets,omitempty"` // 适用目标
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// PromotionTarget 活动适用目标（SKU/商品/品牌/分类）
type PromotionTarget struct {
	ID          uint   `gorm:"primarykey" json:"id"`                                                       // 主键
	PromotionID uint   `gorm:"index;not null" json:"promotion_id"`                                         // 活动ID
	TargetType  string `gorm:"type:varchar(20);not null;index:idx_promotion_target" json:"target_type"`    // 目标类型
	TargetID    uint   `gorm:"not null;index:idx_promotion_target" json:"target_id"`                       // 目标ID

	Promotion *Promotion `gorm:"foreignKey:PromotionID" json:"promotion,omitempty"` // 关联活动
}

// TableName 指定表名
func (PromotionTarget) TableName() string {
	return "promotion_targets"
}

// PromotionUsage 活动使用记录（每个享受折扣的订单项一行）
type PromotionUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	PromotionID    uint      `gorm:"index;not null" json:"promotion_id"`                           // 活动ID
	OrderID        uint      `gorm:"index;not null" json:"order_id"`                               // 订单ID
	OrderItemID    uint      `gorm:"index;not null" json:"order_item_id"`                          // 订单项ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (PromotionUsage) TableName() string {
	return "promotion_usages"
}
