package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/storage"
)

// CategoryService определяет интерфейс для административного управления категориями.
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	log          *slog.Logger
	categoryRepo storage.CategoryStorage
}

func NewCategoryService(log *slog.Logger, categoryRepo storage.CategoryStorage) CategoryService {
	return &categoryService{
		log:          log,
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	const op = "service.CategoryService.List"

	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	const op = "service.CategoryService.Create"

	created, err := s.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create category: %w", op, err)
	}
	s.log.Info("category created", slog.String("op", op), slog.Int64("categoryID", created.ID))
	return created, nil
}

func (s *categoryService) Update(ctx context.Context, category *models.Category) error {
	const op = "service.CategoryService.Update"

	if err := s.categoryRepo.UpdateCategory(ctx, category); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	const op = "service.CategoryService.Delete"

	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
