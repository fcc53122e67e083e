package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/storage"
)

const userColumnsQuery = "SELECT id, username, email, pass_hash, role, created_at FROM users"

func TestGetUserByUsername_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	username := "farmer1"

	// Подготавливаем ожидаемые строки результата.
	rows := sqlmock.NewRows([]string{"id", "username", "email", "pass_hash", "role", "created_at"}).
		AddRow(1, username, "farmer1@example.com", []byte("hashed-password"), models.RoleUser, time.Now())

	query := regexp.QuoteMeta(userColumnsQuery + " WHERE username = $1")
	mock.ExpectQuery(query).WithArgs(username).WillReturnRows(rows)

	user, err := repo.GetUserByUsername(ctx, username)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, username, user.Username)
	assert.Equal(t, []byte("hashed-password"), user.PassHash)
	assert.Equal(t, models.RoleUser, user.Role)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	rows := sqlmock.NewRows([]string{"id", "username", "email", "pass_hash", "role", "created_at"})
	query := regexp.QuoteMeta(userColumnsQuery + " WHERE username = $1")
	mock.ExpectQuery(query).WithArgs("ghost").WillReturnRows(rows)

	user, err := repo.GetUserByUsername(ctx, "ghost")
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("INSERT INTO users (username, email, pass_hash, role) VALUES ($1, $2, $3, $4) RETURNING id")
	mock.ExpectQuery(query).WithArgs("farmer1", "farmer1@example.com", []byte("hashed"), models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	user := &models.User{
		Username: "farmer1",
		Email:    "farmer1@example.com",
		PassHash: []byte("hashed"),
		Role:     models.RoleUser,
	}
	created, err := repo.CreateUser(ctx, user)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	// Эмулируем нарушение уникальности username (код 23505).
	query := regexp.QuoteMeta("INSERT INTO users (username, email, pass_hash, role) VALUES ($1, $2, $3, $4) RETURNING id")
	mock.ExpectQuery(query).WithArgs("farmer1", "farmer1@example.com", []byte("hashed"), models.RoleUser).
		WillReturnError(&pq.Error{Code: "23505"})

	user := &models.User{
		Username: "farmer1",
		Email:    "farmer1@example.com",
		PassHash: []byte("hashed"),
		Role:     models.RoleUser,
	}
	created, err := repo.CreateUser(ctx, user)
	assert.Error(t, err)
	assert.Nil(t, created)
	assert.True(t, errors.Is(err, storage.ErrUserExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

const productColumns = "id, name, description, price, stock, category_id, brand, origin, specs, image_url, source_url, created_at"

func productRow(id int64, name string, price string, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "category_id",
		"brand", "origin", "specs", "image_url", "source_url", "created_at"}).
		AddRow(id, name, "", price, stock, nil, "", "", "", "", "", time.Now())
}

func TestGetProductByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("SELECT " + productColumns + " FROM products WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(int64(1)).
		WillReturnRows(productRow(1, "Compact Utility Tractor 45HP", "18500.00", 12))

	product, err := repo.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, "Compact Utility Tractor 45HP", product.Name)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("18500.00")))
	assert.Equal(t, 12, product.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("SELECT " + productColumns + " FROM products WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.GetProductByID(ctx, 99)
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_WithCategoryFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	categoryID := int64(3)

	// Сначала считается общее число товаров под фильтром.
	countQuery := regexp.QuoteMeta("SELECT count(*) FROM products WHERE category_id = $1")
	mock.ExpectQuery(countQuery).WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	listQuery := regexp.QuoteMeta("SELECT " + productColumns +
		" FROM products WHERE category_id = $1 ORDER BY price DESC LIMIT $2 OFFSET $3")
	mock.ExpectQuery(listQuery).WithArgs(categoryID, 12, 0).
		WillReturnRows(productRow(7, "Mini Combine Harvester", "42000.00", 4))

	products, total, err := repo.ListProducts(ctx, storage.ProductFilter{
		CategoryID: &categoryID,
		SortField:  "price",
		SortDesc:   true,
		Limit:      12,
		Offset:     0,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, products, 1)
	assert.Equal(t, "Mini Combine Harvester", products[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProductByIDTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("SELECT " + productColumns + " FROM products WHERE id = $1 FOR UPDATE NOWAIT")
	mock.ExpectQuery(query).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.LockProductByIDTx(ctx, tx, 99)
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// Уменьшение остатка выполняется одним условным UPDATE.
	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DecrementStockTx(ctx, tx, 1, 3)
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// Остатка не хватает: ни одна строка не затронута.
	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(100, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DecrementStockTx(ctx, tx, 1, 100)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInsufficientStock))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartItemByProductTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("SELECT id, cart_id, product_id, quantity, price FROM cart_items WHERE cart_id = $1 AND product_id = $2")
	mock.ExpectQuery(query).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	item, err := repo.GetCartItemByProductTx(ctx, tx, 1, 2)
	assert.Error(t, err)
	assert.Nil(t, item)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartItemTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	price := decimal.RequireFromString("290.00")
	query := regexp.QuoteMeta("UPDATE cart_items SET quantity = $1, price = $2 WHERE id = $3")
	mock.ExpectExec(query).WithArgs(2, price, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateCartItemTx(ctx, tx, 10, 2, price)
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta(`INSERT INTO orders (user_id, status, shipping_address, total_amount, created_at)
			 VALUES ($1, $2, $3, $4, NOW()) RETURNING id`)
	total := decimal.RequireFromString("18500.00")
	mock.ExpectQuery(query).
		WithArgs(int64(1), models.StatusPending, "Village road 5", total).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	order := &models.Order{
		UserID:          1,
		Status:          models.StatusPending,
		ShippingAddress: "Village road 5",
		TotalAmount:     total,
	}
	id, err := repo.CreateOrderTx(ctx, tx, order)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItemTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// Вместе с позицией сохраняется снимок имени товара
	query := regexp.QuoteMeta("INSERT INTO order_items (order_id, product_id, product_name, quantity, price) VALUES ($1, $2, $3, $4, $5)")
	price := decimal.RequireFromString("4700.00")
	mock.ExpectExec(query).
		WithArgs(int64(42), int64(1), "Rotavator", 2, price).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.CreateOrderItemTx(ctx, tx, &models.OrderItem{
		OrderID:     42,
		ProductID:   1,
		ProductName: "Rotavator",
		Quantity:    2,
		Price:       price,
	})
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	orderQuery := regexp.QuoteMeta(`SELECT id, user_id, status, shipping_address, total_amount, created_at
		 FROM orders WHERE id = $1`)
	mock.ExpectQuery(orderQuery).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "shipping_address", "total_amount", "created_at"}).
			AddRow(42, 1, models.StatusPending, "Village road 5", "4700.00", time.Now()))

	// Позиции читаются из order_items без обращения к каталогу
	itemsQuery := regexp.QuoteMeta(`SELECT id, order_id, product_id, product_name, quantity, price
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`)
	mock.ExpectQuery(itemsQuery).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "price"}).
			AddRow(7, 42, 1, "Rotavator", 2, "4700.00"))

	order, err := repo.GetOrderByID(ctx, 42)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Rotavator", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("4700.00")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2")
	mock.ExpectExec(query).WithArgs(models.StatusShipped, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateOrderStatus(ctx, 99, models.StatusShipped)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCategoryRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")
	mock.ExpectExec(query).WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteCategory(ctx, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCategoryNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
