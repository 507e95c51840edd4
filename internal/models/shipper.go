package models

import "time"

// Shipper 配送员
type Shipper struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	Name      string    `gorm:"not null" json:"name"`                   // 姓名
	Phone     string    `gorm:"type:varchar(32)" json:"phone"`          // 电话
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"` // 是否在岗
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                // 更新时间
}

// TableName 指定表名
func (Shipper) TableName() string {
	return "shippers"
}
