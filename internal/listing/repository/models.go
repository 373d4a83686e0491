package repository

import (
	"time"

	"github.com/narwhalmedia/classifieds/internal/listing/domain"
)

// Post is the posts table row.
type Post struct {
	ID              int64    `gorm:"primaryKey;autoIncrement"`
	UserID          int64    `gorm:"not null;index"`
	CategoryID      int64    `gorm:"not null;index:idx_posts_category_status"`
	SubCategoryID   *int64   `gorm:"index"`
	Title           string   `gorm:"type:varchar(200);not null"`
	Description     string   `gorm:"type:text"`
	Price           *float64 `gorm:"type:numeric(12,2)"`
	PriceType       string   `gorm:"type:varchar(20);not null;default:'fixed'"`
	ContactName     string   `gorm:"type:varchar(100)"`
	ContactPhone    string   `gorm:"type:varchar(20)"`
	StateID         *int64   `gorm:"index"`
	DistrictID      *int64   `gorm:"index"`
	TalukaID        *int64
	VillageID       *int64
	Condition       string `gorm:"type:varchar(30)"`
	Brand           string `gorm:"type:varchar(100)"`
	Status          string `gorm:"type:varchar(20);not null;default:'pending';index:idx_posts_category_status"`
	IsFeatured      bool   `gorm:"not null;default:false;index"`
	IsUrgent        bool   `gorm:"not null;default:false"`
	RejectionReason string `gorm:"type:text"`
	ViewCount       int64  `gorm:"not null;default:0"`
	LikeCount       int64  `gorm:"not null;default:0"`
	CommentCount    int64  `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       *time.Time
}

// TableName pins the table name.
func (Post) TableName() string { return "posts" }

func (p *Post) toDomain() *domain.Post {
	return &domain.Post{
		ID:              p.ID,
		UserID:          p.UserID,
		CategoryID:      p.CategoryID,
		SubCategoryID:   p.SubCategoryID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		PriceType:       domain.PriceType(p.PriceType),
		ContactName:     p.ContactName,
		ContactPhone:    p.ContactPhone,
		StateID:         p.StateID,
		DistrictID:      p.DistrictID,
		TalukaID:        p.TalukaID,
		VillageID:       p.VillageID,
		Condition:       p.Condition,
		Brand:           p.Brand,
		Status:          domain.Status(p.Status),
		IsFeatured:      p.IsFeatured,
		IsUrgent:        p.IsUrgent,
		RejectionReason: p.RejectionReason,
		ViewCount:       p.ViewCount,
		LikeCount:       p.LikeCount,
		CommentCount:    p.CommentCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		ExpiresAt:       p.ExpiresAt,
	}
}

func fromDomain(p *domain.Post) *Post {
	priceType := string(p.PriceType)
	if priceType == "" {
		priceType = string(domain.PriceFixed)
	}
	return &Post{
		ID:              p.ID,
		UserID:          p.UserID,
		CategoryID:      p.CategoryID,
		SubCategoryID:   p.SubCategoryID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		PriceType:       priceType,
		ContactName:     p.ContactName,
		ContactPhone:    p.ContactPhone,
		StateID:         p.StateID,
		DistrictID:      p.DistrictID,
		TalukaID:        p.TalukaID,
		VillageID:       p.VillageID,
		Condition:       p.Condition,
		Brand:           p.Brand,
		Status:          string(p.Status),
		IsFeatured:      p.IsFeatured,
		IsUrgent:        p.IsUrgent,
		RejectionReason: p.RejectionReason,
		ViewCount:       p.ViewCount,
		LikeCount:       p.LikeCount,
		CommentCount:    p.CommentCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		ExpiresAt:       p.ExpiresAt,
	}
}
