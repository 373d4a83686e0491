package repository

import (
	"time"

	"github.com/narwhalmedia/classifieds/internal/reference/domain"
)

// State is the states table row.
type State struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"type:varchar(100);not null"`
	Code     string `gorm:"type:varchar(10);uniqueIndex"`
	IsActive bool   `gorm:"not null"`
}

func (State) TableName() string { return "states" }

// District is the districts table row.
type District struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	StateID  int64  `gorm:"not null;index"`
	Name     string `gorm:"type:varchar(100);not null"`
	Code     string `gorm:"type:varchar(10)"`
	IsActive bool   `gorm:"not null"`
}

func (District) TableName() string { return "districts" }

// Taluka is the talukas table row.
type Taluka struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	DistrictID int64  `gorm:"not null;index"`
	Name       string `gorm:"type:varchar(100);not null"`
	Code       string `gorm:"type:varchar(10)"`
	IsActive   bool   `gorm:"not null"`
}

func (Taluka) TableName() string { return "talukas" }

// Village is the villages table row.
type Village struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	TalukaID int64  `gorm:"not null;index"`
	Name     string `gorm:"type:varchar(100);not null"`
	Code     string `gorm:"type:varchar(10)"`
	Pincode  string `gorm:"type:varchar(10)"`
	IsActive bool   `gorm:"not null"`
}

func (Village) TableName() string { return "villages" }

// Category is the categories table row. PostCount is filled by queries
// that project it and is not a column.
type Category struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex"`
	NameLocal string `gorm:"type:varchar(100)"`
	Icon      string `gorm:"type:varchar(100)"`
	SortOrder int    `gorm:"not null;default:0"`
	IsActive  bool   `gorm:"not null"`
	PostCount int64  `gorm:"->;-:migration"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Category) TableName() string { return "categories" }

// SubCategory is the sub_categories table row.
type SubCategory struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CategoryID int64  `gorm:"not null;index"`
	Name       string `gorm:"type:varchar(100);not null"`
	NameLocal  string `gorm:"type:varchar(100)"`
	Icon       string `gorm:"type:varchar(100)"`
	SortOrder  int    `gorm:"not null;default:0"`
	IsActive   bool   `gorm:"not null"`
	PostCount  int64  `gorm:"->;-:migration"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (SubCategory) TableName() string { return "sub_categories" }

func (s *State) toDomain() domain.State {
	return domain.State{ID: s.ID, Name: s.Name, Code: s.Code, IsActive: s.IsActive}
}

func (d *District) toDomain() domain.District {
	return domain.District{ID: d.ID, StateID: d.StateID, Name: d.Name, Code: d.Code, IsActive: d.IsActive}
}

func (t *Taluka) toDomain() domain.Taluka {
	return domain.Taluka{ID: t.ID, DistrictID: t.DistrictID, Name: t.Name, Code: t.Code, IsActive: t.IsActive}
}

func (v *Village) toDomain() domain.Village {
	return domain.Village{
		ID:       v.ID,
		TalukaID: v.TalukaID,
		Name:     v.Name,
		Code:     v.Code,
		Pincode:  v.Pincode,
		IsActive: v.IsActive,
	}
}

func (c *Category) toDomain() *domain.Category {
	return &domain.Category{
		ID:        c.ID,
		Name:      c.Name,
		NameLocal: c.NameLocal,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
		PostCount: c.PostCount,
	}
}

func categoryFromDomain(c *domain.Category) *Category {
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		NameLocal: c.NameLocal,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
	}
}

func (s *SubCategory) toDomain() *domain.SubCategory {
	return &domain.SubCategory{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		NameLocal:  s.NameLocal,
		Icon:       s.Icon,
		SortOrder:  s.SortOrder,
		IsActive:   s.IsActive,
		PostCount:  s.PostCount,
	}
}

func subCategoryFromDomain(s *domain.SubCategory) *SubCategory {
	return &SubCategory{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		NameLocal:  s.NameLocal,
		Icon:       s.Icon,
		SortOrder:  s.SortOrder,
		IsActive:   s.IsActive,
	}
}
