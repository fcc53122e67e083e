package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/linemk/agro-shop/internal/domain/models"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStorage описывает методы для работы с корзиной и её позициями.
type CartStorage interface {
	GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	CreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	// GetCartItems возвращает позиции корзины вместе с данными товара.
	GetCartItems(ctx context.Context, cartID int64) ([]*models.CartItem, error)
	GetCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error)
	GetCartItemByIDTx(ctx context.Context, tx *sql.Tx, itemID int64) (*models.CartItem, error)
	GetCartItemByProductTx(ctx context.Context, tx *sql.Tx, cartID, productID int64) (*models.CartItem, error)
	CreateCartItemTx(ctx context.Context, tx *sql.Tx, item *models.CartItem) (*models.CartItem, error)
	UpdateCartItemTx(ctx context.Context, tx *sql.Tx, itemID int64, quantity int, price decimal.Decimal) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	// ClearCartTx удаляет все позиции, сама корзина остаётся.
	ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, created_at FROM carts WHERE user_id = $1", userID)
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO carts (user_id) VALUES ($1) RETURNING id, created_at", userID,
	).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

const cartItemJoinQuery = `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price,
		       p.name, p.price, p.stock, p.image_url
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

func scanCartItemRows(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{Product: &models.Product{}}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price,
			&item.Product.Name, &item.Product.Price, &item.Product.Stock, &item.Product.ImageURL); err != nil {
			return nil, err
		}
		item.Product.ID = item.ProductID
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetCartItems(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemJoinQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItemRows(rows)
}

func (r *cartRepository) GetCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, cartItemJoinQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItemRows(rows)
}

func (r *cartRepository) GetCartItemByIDTx(ctx context.Context, tx *sql.Tx, itemID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, cart_id, product_id, quantity, price FROM cart_items WHERE id = $1", itemID)
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) GetCartItemByProductTx(ctx context.Context, tx *sql.Tx, cartID, productID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, cart_id, product_id, quantity, price FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cartID, productID)
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) CreateCartItemTx(ctx context.Context, tx *sql.Tx, item *models.CartItem) (*models.CartItem, error) {
	err := tx.QueryRowContext(ctx,
		"INSERT INTO cart_items (cart_id, product_id, quantity, price) VALUES ($1, $2, $3, $4) RETURNING id",
		item.CartID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) UpdateCartItemTx(ctx context.Context, tx *sql.Tx, itemID int64, quantity int, price decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1, price = $2 WHERE id = $3", quantity, price, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteCartItem(ctx context.Context, itemID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}
