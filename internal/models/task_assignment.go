package models

import (
	"time"
)

// TaskAssignment is one row of the append-only assignment ledger. Rows are
// never updated; the current assignee of a task is the user of the row with
// the greatest (AssignedAt, ID).
type TaskAssignment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	TaskID       uint64    `gorm:"not null;index:idx_task_assignments_order,priority:1" json:"task_id"`
	UserID       uint64    `gorm:"not null;index" json:"user_id"`
	AssignedByID uint64    `gorm:"not null" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"not null;index:idx_task_assignments_order,priority:2" json:"assigned_at"`

	// Relations
	User       User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssignedBy User `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
}

// After reports whether a sorts after b in ledger order.
func (a TaskAssignment) After(b TaskAssignment) bool {
	if !a.AssignedAt.Equal(b.AssignedAt) {
		return a.AssignedAt.After(b.AssignedAt)
	}
	return a.ID > b.ID
}
