package repository

import (
	"time"

	"github.com/clubware/taskhub/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAssignees creates a task and its assignment rows in a
	// single transaction
	CreateWithAssignees(task *models.Task, userIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists changes to a task's own columns
	Update(task *models.Task) error

	// Delete permanently removes a task and its assignments and comments
	Delete(id uint64) error

	// ReplaceAssignees swaps the full assignee set of a task
	ReplaceAssignees(taskID uint64, userIDs []uint64) error

	// AddComment appends a comment to a task
	AddComment(comment *models.Comment) error

	// ListComments lists a task's comments in insertion order
	ListComments(taskID uint64) ([]models.Comment, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// InvolvedUserID restricts the list to tasks the user assigned or
	// is assigned to. Nil applies no visibility restriction.
	InvolvedUserID *uint64
	Status         *models.TaskStatus
	StatusNot      *models.TaskStatus
	AssignerID     *uint64
	AssignedUserID *uint64
	DeadlineFrom   *time.Time
	DeadlineTo     *time.Time
	SortByDeadline bool
	SortByProgress bool
	Page           int
	PageSize       int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists changes to a user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ListAll returns every user in the roster
	ListAll() ([]models.User, error)
}

// ActivityLogRepository defines the interface for activity feed data access
type ActivityLogRepository interface {
	// Create appends an entry to the activity feed
	Create(entry *models.ActivityLog) error

	// List retrieves feed entries newest-first with pagination
	List(page, pageSize int) ([]models.ActivityLog, int64, error)
}
