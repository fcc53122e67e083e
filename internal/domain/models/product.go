package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет единицу каталога сельхозтехники.
// Stock уменьшается только атомарно вместе с созданием позиции заказа.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Origin      string          `json:"origin,omitempty"`
	Specs       string          `json:"specs,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	SourceURL   string          `json:"source_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
