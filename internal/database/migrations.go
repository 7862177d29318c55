package database

import (
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserRole{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Comment{},
		&models.ProjectSummary{},
	}
}

// requiredIndexes are the indexes the access and ledger queries rely on.
var requiredIndexes = []struct {
	model interface{}
	name  string
}{
	// Current assignee lookup: (task_id, assigned_at)
	{&models.TaskAssignment{}, "idx_task_assignments_order"},
	// Membership uniqueness and lookup
	{&models.ProjectMember{}, "uk_project_user"},
}

// AddIndexes creates any required index missing from the schema.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range requiredIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
