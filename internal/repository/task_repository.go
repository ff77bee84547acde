package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAssignees creates a task and its assignment rows in a
// single transaction
func (r *GormTaskRepository) CreateWithAssignees(task *models.Task, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:   task.ID,
				UserID:   userID,
				Position: i,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// FindByID finds a task by ID with optional preloading. Assignments
// load in display order and comments in insertion order.
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		switch p {
		case "Assignments":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("task_assignments.position ASC")
			})
		case "Comments":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.created_at ASC, comments.id ASC")
			})
		default:
			query = query.Preload(p)
		}
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.InvolvedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.InvolvedUserID)
		query = query.Where("tasks.assigner_id = ? OR EXISTS (?)", *filter.InvolvedUserID, assignmentSubQuery)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.StatusNot != nil {
		query = query.Where("tasks.status <> ?", *filter.StatusNot)
	}
	if filter.AssignerID != nil {
		query = query.Where("tasks.assigner_id = ?", *filter.AssignerID)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	if filter.DeadlineFrom != nil {
		query = query.Where("tasks.deadline >= ?", *filter.DeadlineFrom)
	}
	if filter.DeadlineTo != nil {
		query = query.Where("tasks.deadline < ?", *filter.DeadlineTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	switch {
	case filter.SortByDeadline:
		listQuery = listQuery.Order("tasks.deadline ASC")
	case filter.SortByProgress:
		listQuery = listQuery.Order("tasks.progress ASC")
	default:
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	err := listQuery.
		Preload("Assigner").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_assignments.position ASC")
		}).
		Preload("Assignments.User").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists changes to a task's own columns
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete permanently removes a task and its assignments and comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignees swaps the full assignee set of a task
func (r *GormTaskRepository) ReplaceAssignees(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:   taskID,
				UserID:   userID,
				Position: i,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// AddComment appends a comment to a task. Inserts never touch existing
// rows, so concurrent commenters cannot overwrite each other.
func (r *GormTaskRepository) AddComment(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

// ListComments lists a task's comments in insertion order
func (r *GormTaskRepository) ListComments(taskID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Preload("User").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
