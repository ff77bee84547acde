package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/models"
)

// GormActivityLogRepository is a GORM implementation of ActivityLogRepository
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends an entry to the activity feed
func (r *GormActivityLogRepository) Create(entry *models.ActivityLog) error {
	return r.db.Omit(clause.Associations).Create(entry).Error
}

// List retrieves feed entries newest-first with pagination
func (r *GormActivityLogRepository) List(page, pageSize int) ([]models.ActivityLog, int64, error) {
	var entries []models.ActivityLog

	query := r.db.Model(&models.ActivityLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC, id DESC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Preload("User").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
