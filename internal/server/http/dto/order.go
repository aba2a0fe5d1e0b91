package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest is one order line as submitted by the client.
type OrderItemRequest struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CreateOrderRequest is the POST /api/v1/orders body.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest is the PUT /api/v1/orders/:id body.
type UpdateOrderRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse mirrors an order line in responses.
type OrderItemResponse struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// UserResponse is the owner profile embedded in order responses, resolved
// from the user service on every read.
type UserResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email,omitempty"`
}

// OrderResponse is the representation of an order returned by the API.
type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"userId"`
	User        *UserResponse       `json:"user,omitempty"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
