package repository

import (
	"context"

	"github.com/narwhalmedia/classifieds/internal/reference/domain"
)

// GeoRepository reads the geographic hierarchy. Only active rows are
// returned, ordered by name.
type GeoRepository interface {
	ListStates(ctx context.Context) ([]domain.State, error)
	ListDistricts(ctx context.Context, stateID int64) ([]domain.District, error)
	ListTalukas(ctx context.Context, districtID int64) ([]domain.Taluka, error)
	ListVillages(ctx context.Context, talukaID int64) ([]domain.Village, error)
}

// CategoryRepository defines category and subcategory data access.
type CategoryRepository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]*domain.Category, error)
	ListSubCategories(ctx context.Context, categoryID int64) ([]*domain.SubCategory, error)
	QueryCategories(ctx context.Context, filter domain.CategoryFilter, sort domain.CategorySort, limit, offset int) ([]*domain.Category, int64, error)

	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	GetSubCategory(ctx context.Context, id int64) (*domain.SubCategory, error)
	CreateSubCategory(ctx context.Context, s *domain.SubCategory) error
	UpdateSubCategory(ctx context.Context, s *domain.SubCategory) error
	DeleteSubCategory(ctx context.Context, id int64) error

	Stats(ctx context.Context, top int) (*domain.CategoryStats, error)
}

// Repository combines both reference interfaces.
type Repository interface {
	GeoRepository
	CategoryRepository
}
