package models

import "time"

// Order 订单表（订单不删除，只通过状态机流转）
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                     // 主键
	OrderNo           string     `gorm:"uniqueIndex;not null" json:"order_no"`                                     // 订单编号
	CustomerID        uint       `gorm:"index;not null;default:0" json:"customer_id"`                              // 客户ID（门店散客为 0）
	StaffID           *uint      `gorm:"index" json:"staff_id,omitempty"`                                          // 下单店员ID
	Source            string     `gorm:"type:varchar(20);not null" json:"source"`                                  // 来源（customer/staff）
	ReceiverName      string     `gorm:"type:varchar(120)" json:"receiver_name"`                                   // 收货人
	ReceiverPhone     string     `gorm:"type:varchar(32)" json:"receiver_phone"`                                   // 收货电话
	ReceiverAddress   string     `gorm:"type:text" json:"receiver_address"`                                        // 收货地址
	ReceiverEmail     string     `gorm:"type:varchar(255)" json:"receiver_email"`                                  // 通知邮箱
	IsPickup          bool       `gorm:"not null;default:false" json:"is_pickup"`                                  // 是否到店自提
	PaymentMethod     string     `gorm:"type:varchar(20);index;not null" json:"payment_method"`                    // 支付方式（cod/vnpay/momo）
	Platform          string     `gorm:"type:varchar(20);not null" json:"platform"`                                // 下单平台（web/staff/mobile）
	Status            string     `gorm:"type:varchar(32);index;not null" json:"status"`                            // 订单状态
	TotalPrice        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`                 // 原价合计
	PromotionDiscount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"promotion_discount"`          // 活动优惠
	RankDiscountRate  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"rank_discount_rate"`          // 下单时会员折扣率（%）
	RankDiscount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"rank_discount"`               // 会员优惠
	VoucherDiscount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"voucher_discount"`            // 优惠券优惠
	TotalDiscount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_discount"`              // 优惠合计
	FinalTotalPrice   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"final_total_price"`           // 实付金额
	VoucherID         *uint      `gorm:"index" json:"voucher_id,omitempty"`                                        // 使用的优惠券
	CartItemIDs       UintList   `gorm:"type:text" json:"cart_item_ids,omitempty"`                                 // 下单勾选的购物车项
	ShipperID         *uint      `gorm:"index" json:"shipper_id,omitempty"`                                        // 配送员
	PaidAt            *time.Time `gorm:"index" json:"paid_at"`                                                     // 支付时间
	CanceledAt        *time.Time `gorm:"index" json:"canceled_at"`                                                 // 取消时间
	CompletedAt       *time.Time `gorm:"index" json:"completed_at"`                                                // 完成时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                                  // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

