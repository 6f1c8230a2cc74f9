package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/pkg/idx"
)

var (
	ErrDuplicateCategory = errors.New("duplicate_category")
	ErrCategoryNotFound  = errors.New("category_not_found")
)

// CategoryService manages the shared expense category catalogue. Categories
// are global, not per-user; everyone classifies spend against the same set.
type CategoryService struct {
	Store store.Store
}

// CreateCategory adds a new category. Names are unique; a duplicate is
// rejected with ErrDuplicateCategory.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, ErrInvalidInput
	}

	c := domain.Category{
		ID:   idx.New().String(),
		Name: name,
	}
	if err := s.Store.Categories().CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Category{}, ErrDuplicateCategory
		}
		return domain.Category{}, err
	}

	return s.Store.Categories().GetCategoryByID(ctx, c.ID)
}

// GetCategoryByID fetches one category.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	c, err := s.Store.Categories().GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Category{}, ErrCategoryNotFound
		}
		return domain.Category{}, err
	}
	return c, nil
}

// ListCategories returns every category, ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories().ListCategories(ctx)
}
