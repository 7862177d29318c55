package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Append inserts a ledger row. Rows are never updated afterwards.
func (r *GormAssignmentRepository) Append(ctx context.Context, record *models.TaskAssignment) error {
	return r.db.WithContext(ctx).Omit("User", "AssignedBy").Create(record).Error
}

// Current returns the latest ledger row of a task
func (r *GormAssignmentRepository) Current(ctx context.Context, taskID uint64) (*models.TaskAssignment, error) {
	var record models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Scopes(database.LedgerOrder).
		Take(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// CurrentAssignee returns the user holding the task, or false when the task
// was never assigned.
func (r *GormAssignmentRepository) CurrentAssignee(ctx context.Context, taskID uint64) (uint64, bool, error) {
	record, err := r.Current(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return record.UserID, true, nil
}

// CurrentForTasks returns the latest ledger row for each task that has one
func (r *GormAssignmentRepository) CurrentForTasks(ctx context.Context, taskIDs []uint64) (map[uint64]models.TaskAssignment, error) {
	current := make(map[uint64]models.TaskAssignment, len(taskIDs))
	if len(taskIDs) == 0 {
		return current, nil
	}

	var records []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Find(&records).Error; err != nil {
		return nil, err
	}

	for _, record := range records {
		if held, ok := current[record.TaskID]; !ok || record.After(held) {
			current[record.TaskID] = record
		}
	}

	return current, nil
}

// History lists every ledger row of a task, newest first
func (r *GormAssignmentRepository) History(ctx context.Context, taskID uint64) ([]models.TaskAssignment, error) {
	var records []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("AssignedBy").
		Where("task_id = ?", taskID).
		Scopes(database.LedgerOrder).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
