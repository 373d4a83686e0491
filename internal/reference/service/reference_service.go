package service

import (
	"context"
	"strings"

	"github.com/narwhalmedia/classifieds/internal/reference/domain"
	"github.com/narwhalmedia/classifieds/internal/reference/repository"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// Category change kinds carried by CategoryChangedEvent.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ReferenceService serves the geography and category lists from the cache
// and keeps the cache in step with category edits.
type ReferenceService struct {
	repo     repository.Repository
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	ttl      cache.TTLPolicy
	paging   pagination.Policy
	logger   interfaces.Logger
}

// NewReferenceService creates a new reference service.
func NewReferenceService(
	repo repository.Repository,
	eventBus interfaces.EventBus,
	c interfaces.Cache,
	ttl cache.TTLPolicy,
	paging pagination.Policy,
	logger interfaces.Logger,
) *ReferenceService {
	return &ReferenceService{
		repo:     repo,
		eventBus: eventBus,
		cache:    c,
		ttl:      ttl,
		paging:   paging,
		logger:   logger,
	}
}

func fetch[V any](ctx context.Context, s *ReferenceService, key string, load func(ctx context.Context) (V, error)) (V, error) {
	return cache.Fetch(ctx, s.cache, key, s.ttl.For(key), func(ctx context.Context) (V, error) {
		s.logger.Debug("Loading reference list", interfaces.String("key", key))
		return load(ctx)
	})
}

// States returns the active states.
func (s *ReferenceService) States(ctx context.Context) ([]domain.State, error) {
	return fetch(ctx, s, cache.States(), s.repo.ListStates)
}

// Districts returns the active districts of a state.
func (s *ReferenceService) Districts(ctx context.Context, stateID int64) ([]domain.District, error) {
	return fetch(ctx, s, cache.Districts(stateID), func(ctx context.Context) ([]domain.District, error) {
		return s.repo.ListDistricts(ctx, stateID)
	})
}

// Talukas returns the active talukas of a district.
func (s *ReferenceService) Talukas(ctx context.Context, districtID int64) ([]domain.Taluka, error) {
	return fetch(ctx, s, cache.Talukas(districtID), func(ctx context.Context) ([]domain.Taluka, error) {
		return s.repo.ListTalukas(ctx, districtID)
	})
}

// Villages returns the active villages of a taluka.
func (s *ReferenceService) Villages(ctx context.Context, talukaID int64) ([]domain.Village, error) {
	return fetch(ctx, s, cache.Villages(talukaID), func(ctx context.Context) ([]domain.Village, error) {
		return s.repo.ListVillages(ctx, talukaID)
	})
}

// Categories returns the active categories with their post counts.
func (s *ReferenceService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return fetch(ctx, s, cache.Categories(), func(ctx context.Context) ([]*domain.Category, error) {
		return s.repo.ListCategories(ctx, true)
	})
}

// SubCategories returns the active subcategories of a category, or all of
// them when categoryID is zero.
func (s *ReferenceService) SubCategories(ctx context.Context, categoryID int64) ([]*domain.SubCategory, error) {
	return fetch(ctx, s, cache.SubCategories(categoryID), func(ctx context.Context) ([]*domain.SubCategory, error) {
		return s.repo.ListSubCategories(ctx, categoryID)
	})
}

// QueryCategories returns one page of the admin category list, inactive
// categories included unless filtered. It is not cached.
func (s *ReferenceService) QueryCategories(
	ctx context.Context,
	filter domain.CategoryFilter,
	sort domain.CategorySort,
	page, size int,
) (*pagination.Page[*domain.Category], error) {
	req, err := s.paging.Resolve(page, size, "", "")
	if err != nil {
		return nil, err
	}
	items, total, err := s.repo.QueryCategories(ctx, filter, sort, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, req), nil
}

// Stats returns the category counters and the top categories by posts.
func (s *ReferenceService) Stats(ctx context.Context, top int) (*domain.CategoryStats, error) {
	return s.repo.Stats(ctx, top)
}

// CreateCategory adds a category.
func (s *ReferenceService) CreateCategory(ctx context.Context, c *domain.Category, adminID int64) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return err
	}
	s.categoryChanged(ctx, c.ID, 0, ChangeCreated, adminID)
	return nil
}

// UpdateCategory replaces the editable fields of a category.
func (s *ReferenceService) UpdateCategory(ctx context.Context, c *domain.Category, adminID int64) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.categoryChanged(ctx, c.ID, 0, ChangeUpdated, adminID)
	return nil
}

// DeleteCategory removes an empty category.
func (s *ReferenceService) DeleteCategory(ctx context.Context, id, adminID int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.categoryChanged(ctx, id, 0, ChangeDeleted, adminID)
	return nil
}

// CreateSubCategory adds a subcategory under an existing category.
func (s *ReferenceService) CreateSubCategory(ctx context.Context, sub *domain.SubCategory, adminID int64) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateSubCategory(ctx, sub); err != nil {
		return err
	}
	s.categoryChanged(ctx, sub.CategoryID, sub.ID, ChangeCreated, adminID)
	return nil
}

// UpdateSubCategory replaces the editable fields of a subcategory. The
// parent category cannot be changed.
func (s *ReferenceService) UpdateSubCategory(ctx context.Context, sub *domain.SubCategory, adminID int64) error {
	current, err := s.repo.GetSubCategory(ctx, sub.ID)
	if err != nil {
		return err
	}
	sub.CategoryID = current.CategoryID
	sub.Name = strings.TrimSpace(sub.Name)
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateSubCategory(ctx, sub); err != nil {
		return err
	}
	s.categoryChanged(ctx, sub.CategoryID, sub.ID, ChangeUpdated, adminID)
	return nil
}

// DeleteSubCategory removes a subcategory that has no posts.
func (s *ReferenceService) DeleteSubCategory(ctx context.Context, id, adminID int64) error {
	current, err := s.repo.GetSubCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSubCategory(ctx, id); err != nil {
		return err
	}
	s.categoryChanged(ctx, current.CategoryID, id, ChangeDeleted, adminID)
	return nil
}

// categoryChanged runs after a committed category write.
func (s *ReferenceService) categoryChanged(ctx context.Context, categoryID, subCategoryID int64, change string, adminID int64) {
	s.cache.InvalidateNamespace(cache.NamespaceCategories)
	s.cache.InvalidateNamespace(cache.NamespaceSubCategories)
	s.cache.InvalidateNamespace(cache.FeedNamespace(categoryID))
	s.cache.InvalidateNamespace(cache.Dashboard())

	s.eventBus.PublishAsync(context.WithoutCancel(ctx),
		domain.NewCategoryChangedEvent(categoryID, subCategoryID, change, adminID))

	s.logger.Info("Category changed",
		interfaces.Int64("category_id", categoryID),
		interfaces.Int64("sub_category_id", subCategoryID),
		interfaces.String("change", change),
		interfaces.Int64("admin_id", adminID))
}
