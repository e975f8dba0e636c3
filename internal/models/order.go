package models

import (
	"strings"
	"time"
)

// Order represents a placed purchase. Items are snapshots and are never
// updated after creation.
type Order struct {
	ID           string       `json:"_id" bson:"-" firestore:"-" gorm:"primary_key"`
	Items        ItemList     `json:"items" bson:"items" firestore:"items" gorm:"type:text"`
	TotalPrice   float64      `json:"totalPrice" bson:"totalPrice" firestore:"totalPrice"`
	CustomerInfo CustomerInfo `json:"customerInfo" bson:"customerInfo" firestore:"customerInfo" gorm:"embedded;embedded_prefix:customer_"`
	Status       OrderStatus  `json:"status" bson:"status" firestore:"status"`
	OrderDate    time.Time    `json:"orderDate" bson:"orderDate" firestore:"orderDate"`
	Notes        string       `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// CustomerInfo holds optional contact details supplied at checkout
type CustomerInfo struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty" firestore:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty" firestore:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone,omitempty"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order. Any status
// may follow any other.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus returns the status named by s, or false when s is not
// one of OrderStatuses. Matching is exact.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// OrderStatusList renders the accepted statuses for error messages
func OrderStatusList() string {
	names := make([]string, len(OrderStatuses))
	for i, status := range OrderStatuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}
