package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/storage"
)

var (
	ErrBlankAddress = errors.New("shipping address is required")
	ErrEmptyCart    = errors.New("cart is empty")
)

// StockError возвращается при нехватке остатка конкретного товара во время
// оформления заказа.
type StockError struct {
	ProductName string
}

func (e *StockError) Error() string {
	return "insufficient stock for " + e.ProductName
}

// OrderService определяет интерфейс оформления и просмотра заказов.
type OrderService interface {
	// CreateFromCart преобразует корзину пользователя в заказ, списывает остатки
	// и очищает корзину. Всё в одной транзакции.
	CreateFromCart(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error)
	// BuyNow оформляет заказ на один товар, не затрагивая корзину.
	BuyNow(ctx context.Context, userID, productID int64, quantity int, shippingAddress string) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, cartRepo storage.CartStorage, productRepo storage.ProductStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *orderService) CreateFromCart(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error) {
	const op = "service.OrderService.CreateFromCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if strings.TrimSpace(shippingAddress) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrBlankAddress)
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("starting order transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	items, err := s.cartRepo.GetCartItemsTx(ctx, tx, cart.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.StatusPending,
		ShippingAddress: shippingAddress,
		TotalAmount:     decimal.Zero,
	}

	// Сначала списываем остатки и собираем снимки позиций по текущим ценам.
	// Любая ошибка откатывает транзакцию целиком, включая уже списанные строки.
	var orderItems []*models.OrderItem
	for _, item := range items {
		product, err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to get product", slog.Any("error", err), slog.Int64("productID", item.ProductID))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := s.productRepo.DecrementStockTx(ctx, tx, product.ID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("insufficient stock", slog.String("product", product.Name))
				return nil, fmt.Errorf("%s: %w", op, &StockError{ProductName: product.Name})
			}
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}

		linePrice := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, &models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       linePrice,
		})
		order.TotalAmount = order.TotalAmount.Add(linePrice)
	}

	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}
	order.ID = orderID

	for _, item := range orderItems {
		item.OrderID = orderID
		if err := s.orderRepo.CreateOrderItemTx(ctx, tx, item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
	}
	order.Items = orderItems

	// Корзина очищается, но не удаляется
	if err := s.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", order.ID), slog.String("total", order.TotalAmount.String()))
	return order, nil
}

func (s *orderService) BuyNow(ctx context.Context, userID, productID int64, quantity int, shippingAddress string) (*models.Order, error) {
	const op = "service.OrderService.BuyNow"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("productID", productID),
		slog.Int("quantity", quantity),
	)

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrBlankAddress)
	}

	logger.Info("starting buy-now transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	product, err := s.productRepo.LockProductByIDTx(ctx, tx, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.DecrementStockTx(ctx, tx, product.ID, quantity); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrInsufficientStock) {
			logger.Warn("insufficient stock", slog.String("product", product.Name))
			return nil, fmt.Errorf("%s: %w", op, &StockError{ProductName: product.Name})
		}
		logger.Error("failed to decrement stock", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
	}

	linePrice := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	order := &models.Order{
		UserID:          userID,
		Status:          models.StatusPending,
		ShippingAddress: shippingAddress,
		TotalAmount:     linePrice,
	}

	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}
	order.ID = orderID

	item := &models.OrderItem{
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       linePrice,
	}
	if err := s.orderRepo.CreateOrderItemTx(ctx, tx, item); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order item: %w", op, err)
	}
	order.Items = []*models.OrderItem{item}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", order.ID), slog.String("total", order.TotalAmount.String()))
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListByUser"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *orderService) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetByID"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// UpdateStatus перезаписывает статус заказа без ограничений на переходы:
// администратор может выставить любой статус.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id), slog.String("status", string(status)))

	if err := s.orderRepo.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated")
	return order, nil
}
