package domain

import (
	"time"
)

// OrderItem is one line of an order.
type OrderItem struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Product string  `json:"product"`
}

// Order is a placed checkout.
type Order struct {
	ID              string        `json:"_id"`
	User            string        `json:"user"`
	OrderItems      []OrderItem   `json:"orderItems"`
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Prices
	IsPaid      bool       `json:"isPaid"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	IsDelivered bool       `json:"isDelivered"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewOrder builds an unpaid order for userID from a session that passed the
// place-order gates.
func NewOrder(s *CheckoutSession, userID string) *Order {
	items := make([]OrderItem, 0, len(s.CartItems))
	for _, it := range s.CartItems {
		items = append(items, OrderItem{
			Name:    it.Name,
			Qty:     it.Qty,
			Image:   it.Image,
			Price:   it.Price,
			Product: it.Product,
		})
	}
	var addr Address
	if s.ShippingAddress != nil {
		addr = *s.ShippingAddress
	}
	return &Order{
		User:            userID,
		OrderItems:      items,
		ShippingAddress: addr,
		PaymentMethod:   s.PaymentMethod,
		Prices:          CalculatePrices(s.CartItems),
	}
}
