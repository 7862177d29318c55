package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormSummaryRepository is a GORM implementation of SummaryRepository
type GormSummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new SummaryRepository
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &GormSummaryRepository{db: db}
}

// Create stores a generated summary
func (r *GormSummaryRepository) Create(ctx context.Context, summary *models.ProjectSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// Latest returns the most recent summary of a project
func (r *GormSummaryRepository) Latest(ctx context.Context, projectID uint64) (*models.ProjectSummary, error) {
	var summary models.ProjectSummary
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("generated_at DESC, id DESC").
		Take(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
