package models

import "time"

type ProjectSummary struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	ProjectID     uint64    `gorm:"not null;index" json:"project_id"`
	GeneratedByID uint64    `gorm:"not null" json:"generated_by_id"`
	GeneratedAt   time.Time `gorm:"not null" json:"generated_at"`
	Content       string    `gorm:"type:text;not null" json:"content"`
}
