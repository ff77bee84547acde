package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// DeriveStatus maps a progress percentage onto the task status it
// implies: 0 is To Do, 100 is Completed, anything in between is
// In Progress. Status is never stored independently of progress.
func DeriveStatus(progress int) TaskStatus {
	switch {
	case progress <= 0:
		return TaskStatusTodo
	case progress >= 100:
		return TaskStatusCompleted
	default:
		return TaskStatusInProgress
	}
}

// Task is hard-deleted, not soft-deleted; removing a task permanently
// discards it together with its assignments and comments. The activity
// log keeps a title snapshot so history stays legible afterwards.
type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	Summary     string     `gorm:"type:text" json:"summary,omitempty"`
	AssignerID  uint64     `gorm:"not null" json:"assigner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assigner    User             `gorm:"foreignKey:AssignerID" json:"assigner,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Comments    []Comment        `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

// AssigneeIDs returns the assigned user IDs in display order. The
// assignments relation must be loaded.
func (t Task) AssigneeIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// HasAssignee reports whether the user is currently assigned to the
// task. The assignments relation must be loaded.
func (t Task) HasAssignee(userID uint64) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
