package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher 优惠券
type Voucher struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                               // 主键
	Code              string         `gorm:"uniqueIndex;not null" json:"code"`                                   // 优惠码
	DiscountPercent   Money          `gorm:"type:decimal(20,2);not null" json:"discount_percent"`                // 折扣百分比
	MinOrderAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`      // 使用门槛
	MaxDiscountAmount *Money         `gorm:"type:decimal(20,2)" json:"max_discount_amount"`                      // 最大优惠（空表示不封顶）
	AudienceType      string         `gorm:"type:varchar(20);not null;default:'all'" json:"audience_type"`       // 适用人群（all/assigned）
	StartsAt          *time.Time     `gorm:"index" json:"starts_at"`                                             // 生效时间
	EndsAt            *time.Time     `gorm:"index" json:"ends_at"`                                               // 失效时间
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`                             // 是否启用
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}

// VoucherAssignment 定向发放记录
type VoucherAssignment struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                            // 主键
	VoucherID  uint      `gorm:"not null;uniqueIndex:idx_voucher_assignment" json:"voucher_id"`   // 优惠券ID
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_voucher_assignment" json:"customer_id"`  // 客户ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                         // 创建时间
}

// TableName 指定表名
func (VoucherAssignment) TableName() string {
	return "voucher_assignments"
}

// VoucherUsage 优惠券使用记录（存在即视为该客户已使用，补偿时物理删除）
type VoucherUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                           // 主键
	VoucherID      uint      `gorm:"not null;uniqueIndex:idx_voucher_usage_customer" json:"voucher_id"`  // 优惠券ID
	CustomerID     uint      `gorm:"not null;uniqueIndex:idx_voucher_usage_customer" json:"customer_id"` // 客户ID
	OrderID        uint      `gorm:"index;not null" json:"order_id"`                                 // 订单ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`   // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (VoucherUsage) TableName() string {
	return "voucher_usages"
}
