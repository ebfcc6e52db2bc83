package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	// OrderStatusDelivered is shown by clients; no server transition produces it.
	OrderStatusDelivered OrderStatus = "delivered"
)

type Order struct {
	OrderID      string      `gorm:"column:order_id;primaryKey;size:36" json:"order_id"`
	UserID       string      `gorm:"column:user_id;size:128;not null;index" json:"user_id"`
	TailorID     string      `gorm:"column:tailor_id;size:128;not null;index:idx_orders_tailor_status" json:"tailor_id"`
	DesignURL    string      `gorm:"column:design_url;size:1024;not null" json:"design_url"`
	Status       OrderStatus `gorm:"column:status;size:32;not null;index:idx_orders_tailor_status" json:"status"`
	OrderDate    time.Time   `gorm:"column:order_date;not null" json:"order_date"`
	DeliveryDate *string     `gorm:"column:delivery_date;size:64" json:"delivery_date"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.OrderID == "" {
		o.OrderID = uuid.NewString()
	}
	return nil
}

func (o *Order) HasParticipant(uid string) bool {
	return uid != "" && (o.UserID == uid || o.TailorID == uid)
}
