package models

import "time"

// ProjectMember is a membership row. The organizer is a member even when no
// row exists for them.
type ProjectMember struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:uk_project_user" json:"project_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_project_user;index" json:"user_id"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
