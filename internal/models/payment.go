package models

import "time"

// Payment 网关支付记录（每次发起网关支付一行）
type Payment struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID      uint       `gorm:"index;not null" json:"order_id"`                          // 订单ID
	Provider     string     `gorm:"type:varchar(20);index;not null" json:"provider"`         // 网关（vnpay/momo）
	TxnRef       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"txn_ref"`    // 商户交易号
	Amount       Money      `gorm:"type:decimal(20,2);not null" json:"amount"`               // 网关实际扣款金额
	Status       string     `gorm:"type:varchar(20);index;not null" json:"status"`           // 状态
	PayURL       string     `gorm:"type:text" json:"pay_url"`                                // 跳转地址
	ProviderRef  string     `gorm:"type:varchar(128);index" json:"provider_ref"`             // 网关交易号
	CallbackCode string     `gorm:"type:varchar(32)" json:"callback_code"`                   // 回调结果码
	RawCallback  JSON       `gorm:"type:json" json:"raw_callback,omitempty"`                 // 原始回调
	CallbackAt   *time.Time `gorm:"index" json:"callback_at"`                                // 回调时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
