package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/clubware/taskhub/internal/models"
)

// AddIndexes adds covering indexes that AutoMigrate does not create from tags
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Task indexes for visibility filtering and feed ordering
		{&models.Task{}, "tasks", "idx_tasks_assigner_id", "assigner_id"},
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_deadline", "deadline"},
		{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},

		// Activity feed is read newest-first
		{&models.ActivityLog{}, "activity_logs", "idx_activity_logs_created_at", "created_at"},

		// Comment threads load per task in insertion order
		{&models.Comment{}, "comments", "idx_comments_task_created", "task_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
