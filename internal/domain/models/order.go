package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus — статус заказа. Новый заказ всегда PENDING, дальше статус
// выставляет администратор без ограничений на переходы.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus проверяет, что строка является известным статусом заказа.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status: %q", s)
}

// Order — снимок покупки. После создания изменяется только поле Status.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           []*OrderItem    `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem — позиция заказа с ценой на момент покупки.
// Последующие изменения цены товара на неё не влияют.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"` // Заполняется через JOIN с таблицей products
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}
