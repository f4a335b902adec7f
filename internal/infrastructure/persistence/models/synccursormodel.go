package models

import (
	"time"

	"mirra/internal/shared/constants"
)

// SyncCursorModel stores the last processed issue key per project.
type SyncCursorModel struct {
	ID           uint   `gorm:"primaryKey"`
	ProjectKey   string `gorm:"size:64;not null;uniqueIndex"`
	LastIssueKey string `gorm:"size:64;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SyncCursorModel) TableName() string {
	return constants.TableSyncCursors
}
