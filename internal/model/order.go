package model

import "time"

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s belongs to the status vocabulary
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Payment methods offered at checkout
const (
	PaymentCOD  = "cod"
	PaymentBank = "bank"
	PaymentMomo = "momo"
)

// DeliveryInfo is where an order ships to
type DeliveryInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order is a placed order. Only Status and CancelledAt change after creation.
type Order struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	Items          []CartItem       `json:"items"`
	DeliveryInfo   DeliveryInfo     `json:"deliveryInfo"`
	PaymentMethod  string           `json:"paymentMethod"`
	Subtotal       int64            `json:"subtotal"`
	ShippingFee    int64            `json:"shippingFee"`
	Discount       *AppliedDiscount `json:"discount"`
	DiscountAmount int64            `json:"discountAmount"`
	Total          int64            `json:"total"`
	OrderDate      time.Time        `json:"orderDate"`
	Status         OrderStatus      `json:"status"`
	CancelledAt    *time.Time       `json:"cancelledAt,omitempty"`
}

// ItemCount sums the quantities of the order lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
