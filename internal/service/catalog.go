package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/storage"
)

// CatalogService определяет интерфейс каталога техники.
type CatalogService interface {
	List(ctx context.Context, params ListParams) (*ProductPage, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error)
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ListParams — параметры листинга: страница, размер, фильтры и сортировка.
// SortBy в формате "field" или "field,desc"/"field,asc".
type ListParams struct {
	Page       int
	Size       int
	CategoryID *int64
	Search     string
	SortBy     string
}

// ProductPage — страница каталога в формате, который ожидает фронтенд.
type ProductPage struct {
	Content       []*models.Product `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int               `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// Допустимые поля сортировки: значение подставляется в ORDER BY,
// поэтому всё вне списка игнорируется.
var sortableFields = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

// parseSort разбирает строку вида "price,desc". Неизвестное поле или пустая
// строка дают сортировку по умолчанию (id по возрастанию).
func parseSort(sortBy string) (field string, desc bool) {
	if sortBy == "" {
		return "", false
	}
	parts := strings.Split(sortBy, ",")
	field = strings.TrimSpace(parts[0])
	if !sortableFields[field] {
		return "", false
	}
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		desc = true
	}
	return field, desc
}

func (s *catalogService) List(ctx context.Context, params ListParams) (*ProductPage, error) {
	const op = "service.CatalogService.List"

	if params.Page < 0 {
		params.Page = 0
	}
	if params.Size <= 0 {
		params.Size = defaultPageSize
	}
	if params.Size > maxPageSize {
		params.Size = maxPageSize
	}

	field, desc := parseSort(params.SortBy)
	filter := storage.ProductFilter{
		CategoryID: params.CategoryID,
		Search:     params.Search,
		SortField:  field,
		SortDesc:   desc,
		Limit:      params.Size,
		Offset:     params.Page * params.Size,
	}

	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}

	totalPages := total / params.Size
	if total%params.Size != 0 {
		totalPages++
	}

	if products == nil {
		products = []*models.Product{}
	}
	return &ProductPage{
		Content:       products,
		Page:          params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func (s *catalogService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetByID"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	const op = "service.CatalogService.ListByCategory"

	products, err := s.productRepo.GetProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// Save создаёт товар при нулевом ID и обновляет существующий иначе.
func (s *catalogService) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.Save"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", product.ID))

	if product.ID == 0 {
		created, err := s.productRepo.CreateProduct(ctx, product)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
		}
		logger.Info("product created", slog.Int64("productID", created.ID))
		return created, nil
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product updated")
	return product, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	const op = "service.CatalogService.Delete"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.Int64("productID", id))
	return nil
}
