package service

import (
	"context"
	"fmt"
	"time"

	"factorylink/internal/domain"
	"factorylink/internal/repository"
)

// CategoryInUseError refuses deletion of a category that factories still
// reference.
type CategoryInUseError struct {
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("cannot delete category: it has %d factories associated with it", e.Count)
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context) ([]*domain.CategoryRef, error)
	Get(ctx context.Context, id int64) (*repository.CategoryWithFactories, error)
	Create(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, id int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.CategoryRef, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*repository.CategoryWithFactories, error) {
	return s.categoryRepo.FindWithFactories(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	return s.categoryRepo.Update(ctx, id, name)
}

// Delete removes a category unless factories still reference it.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	count, err := s.categoryRepo.CountFactories(ctx, id)
	if err != nil {
		return err
	}

	if count > 0 {
		return &CategoryInUseError{Count: count}
	}

	return s.categoryRepo.Delete(ctx, id)
}
