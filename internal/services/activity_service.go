package services

import (
	"fmt"
	"log/slog"

	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/repository"
)

// ActivityService records and serves the append-only activity feed.
type ActivityService struct {
	repo   repository.ActivityLogRepository
	logger *slog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo repository.ActivityLogRepository, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityService{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one entry to the feed. A failed write is logged and
// swallowed; audit trouble must not fail the task operation itself.
func (s *ActivityService) Record(userID uint64, action string, taskID uint64, taskTitle string) {
	entry := &models.ActivityLog{
		UserID:    userID,
		Action:    action,
		TaskID:    taskID,
		TaskTitle: taskTitle,
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Warn("failed to record activity",
			"action", action, "task_id", taskID, "user_id", userID, "error", err)
	}
}

// List returns feed entries newest-first.
func (s *ActivityService) List(page, pageSize int) ([]models.ActivityLog, int64, error) {
	entries, total, err := s.repo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}
