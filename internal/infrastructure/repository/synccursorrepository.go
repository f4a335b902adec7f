package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mirra/internal/infrastructure/persistence/models"
	"mirra/internal/shared/logger"
)

// SyncCursorRepository persists per-project sync cursors in the
// database.
type SyncCursorRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewSyncCursorRepository creates a new SyncCursorRepository.
func NewSyncCursorRepository(db *gorm.DB, logger logger.Interface) *SyncCursorRepository {
	return &SyncCursorRepository{db: db, logger: logger}
}

// Get returns the cursor for a project, "" when none is stored.
func (r *SyncCursorRepository) Get(ctx context.Context, projectKey string) (string, error) {
	var model models.SyncCursorModel
	err := r.db.WithContext(ctx).
		Where("project_key = ?", projectKey).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get sync cursor for %s: %w", projectKey, err)
	}
	return model.LastIssueKey, nil
}

// Set replaces the cursor for a project atomically.
func (r *SyncCursorRepository) Set(ctx context.Context, projectKey, issueKey string) error {
	model := models.SyncCursorModel{
		ProjectKey:   projectKey,
		LastIssueKey: issueKey,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_issue_key", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to save sync cursor",
			"project", projectKey, "issue", issueKey, "error", err)
		return fmt.Errorf("failed to save sync cursor for %s: %w", projectKey, err)
	}
	return nil
}
