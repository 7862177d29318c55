package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Roles []UserRole `gorm:"foreignKey:UserID" json:"-"`
}

// RoleAdmin grants view and modify rights on every active project.
const RoleAdmin = "Admin"

// UserRole is a role granted to a user by the identity directory.
type UserRole struct {
	UserID uint64 `gorm:"primarykey" json:"user_id"`
	Role   string `gorm:"primarykey;type:varchar(50)" json:"role"`
}
