package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/storage"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock available")
)

// CartService определяет интерфейс для работы с корзиной пользователя.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
}

type cartService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart возвращает корзину пользователя вместе с позициями.
// Если корзины ещё нет, создаёт пустую.
func (s *cartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrCartNotFound) {
			logger.Error("failed to get cart", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
		}
		logger.Info("cart not found, creating new cart")
		cart, err = s.cartRepo.CreateCart(ctx, userID)
		if err != nil {
			logger.Error("failed to create cart", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create cart: %w", op, err)
		}
	}

	items, err := s.cartRepo.GetCartItems(ctx, cart.ID)
	if err != nil {
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	if items == nil {
		items = []*models.CartItem{}
	}
	cart.Items = items
	return cart, nil
}

// AddItem добавляет товар в корзину. Если позиция по этому товару уже есть,
// количество складывается, а цена позиции пересчитывается как цена * количество.
// Остаток проверяется против итогового количества под блокировкой строки товара.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("quantity", quantity),
	)

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("starting add-to-cart transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Блокируем строку товара, чтобы проверка остатка и запись позиции были согласованы
	product, err := s.productRepo.LockProductByIDTx(ctx, tx, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.cartRepo.GetCartItemByProductTx(ctx, tx, cart.ID, productID)
	if err != nil && !errors.Is(err, storage.ErrCartItemNotFound) {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart item: %w", op, err)
	}

	totalQuantity := quantity
	if item != nil {
		totalQuantity += item.Quantity
	}
	if product.Stock < totalQuantity {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("insufficient stock", slog.Int("stock", product.Stock), slog.Int("requested", totalQuantity))
		return nil, fmt.Errorf("%s: %w", op, ErrInsufficientStock)
	}

	price := product.Price.Mul(decimal.NewFromInt(int64(totalQuantity)))
	if item != nil {
		if err := s.cartRepo.UpdateCartItemTx(ctx, tx, item.ID, totalQuantity, price); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to update cart item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update cart item: %w", op, err)
		}
		item.Quantity = totalQuantity
		item.Price = price
	} else {
		item = &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
		}
		if _, err := s.cartRepo.CreateCartItemTx(ctx, tx, item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create cart item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create cart item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("item added to cart", slog.Int64("itemID", item.ID))
	return item, nil
}

// UpdateItemQuantity выставляет новое количество позиции, валидация та же,
// что и при добавлении: количество положительное и не превышает остаток.
func (s *cartService) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	const op = "service.CartService.UpdateItemQuantity"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID), slog.Int("quantity", quantity))

	if quantity <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	logger.Info("starting cart item update transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	item, err := s.cartRepo.GetCartItemByIDTx(ctx, tx, itemID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart item", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if product.Stock < quantity {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("insufficient stock", slog.Int("stock", product.Stock), slog.Int("requested", quantity))
		return fmt.Errorf("%s: %w", op, ErrInsufficientStock)
	}

	price := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.cartRepo.UpdateCartItemTx(ctx, tx, itemID, quantity, price); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update cart item", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("cart item updated")
	return nil
}

// RemoveItem удаляет позицию из корзины без дополнительных проверок.
func (s *cartService) RemoveItem(ctx context.Context, itemID int64) error {
	const op = "service.CartService.RemoveItem"

	if err := s.cartRepo.DeleteCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("cart item removed", slog.String("op", op), slog.Int64("itemID", itemID))
	return nil
}
