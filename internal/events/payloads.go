package events

import (
	"stockroom/internal/model"

	"github.com/shopspring/decimal"
)

// OrderCreatedPayload is published once an order and its reservations commit.
type OrderCreatedPayload struct {
	OrderID      string            `json:"orderId"`
	CustomerName string            `json:"customerName"`
	Items        []model.OrderItem `json:"items"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
}

// OrderRejectedPayload is published when a create request fails a business rule.
type OrderRejectedPayload struct {
	CustomerName string `json:"customerName"`
	Reason       string `json:"reason"`
	ProductID    string `json:"productId,omitempty"`
	Available    *int   `json:"available,omitempty"`
	Requested    *int   `json:"requested,omitempty"`
}

// OrderStatusChangedPayload is published after every lifecycle transition.
type OrderStatusChangedPayload struct {
	OrderID string            `json:"orderId"`
	From    model.OrderStatus `json:"from"`
	To      model.OrderStatus `json:"to"`
}
