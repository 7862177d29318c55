package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveProjects keeps projects that have not been soft-deleted.
func ActiveProjects(db *gorm.DB) *gorm.DB {
	return db.Where("projects.is_active = ?", true)
}

// LedgerOrder sorts assignment rows newest first. Ties on assigned_at are
// broken by id so the order is total.
func LedgerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("assigned_at DESC, id DESC")
}
