package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart — корзина пользователя, одна на пользователя.
// Создаётся лениво при первом обращении и не удаляется: после оформления заказа
// очищаются только позиции.
type Cart struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Items     []*CartItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// CartItem — позиция корзины. На пару (корзина, товар) существует не более
// одной позиции: повторное добавление увеличивает количество.
// Price всегда пересчитывается как цена товара * количество.
type CartItem struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *Product        `json:"product,omitempty"` // Заполняется через JOIN с таблицей products
}
