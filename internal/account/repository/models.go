package repository

import (
	"time"

	"github.com/narwhalmedia/classifieds/internal/account/domain"
)

// User is the users table row.
type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	UserName    string `gorm:"type:varchar(50);uniqueIndex;not null"`
	FirstName   string `gorm:"type:varchar(100)"`
	LastName    string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Mobile      string `gorm:"type:varchar(20)"`
	StateID     *int64
	DistrictID  *int64 `gorm:"index"`
	Status      string `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// TableName pins the table name.
func (User) TableName() string { return "users" }

func (u *User) toDomain() *domain.User {
	return &domain.User{
		ID:          u.ID,
		UserName:    u.UserName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Mobile:      u.Mobile,
		StateID:     u.StateID,
		DistrictID:  u.DistrictID,
		Status:      domain.Status(u.Status),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func fromDomain(u *domain.User) *User {
	status := string(u.Status)
	if status == "" {
		status = string(domain.StatusActive)
	}
	return &User{
		ID:          u.ID,
		UserName:    u.UserName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Mobile:      u.Mobile,
		StateID:     u.StateID,
		DistrictID:  u.DistrictID,
		Status:      status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
