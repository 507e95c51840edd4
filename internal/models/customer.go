package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户
type Customer struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Email         string         `gorm:"index" json:"email"`                                          // 邮箱
	FullName      string         `gorm:"type:varchar(120)" json:"full_name"`                          // 姓名
	Phone         string         `gorm:"type:varchar(32)" json:"phone"`                               // 电话
	DeviceToken   string         `gorm:"type:varchar(255)" json:"-"`                                  // 推送设备令牌
	RankID        *uint          `gorm:"index" json:"rank_id"`                                        // 会员等级
	TotalSpending Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_spending"` // 累计消费（只增不减）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Rank *Rank `gorm:"foreignKey:RankID" json:"rank,omitempty"` // 关联等级
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

// Rank 会员等级
type Rank struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	Name         string    `gorm:"not null" json:"name"`                                       // 名称
	MinSpending  Money     `gorm:"type:decimal(20,2);not null;default:0;index" json:"min_spending"` // 达标累计消费
	DiscountRate Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_rate"` // 折扣率（%）
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Rank) TableName() string {
	return "ranks"
}
