package models

import "time"

// Actions recorded in the activity feed.
const (
	ActionTaskCreated  = "task_created"
	ActionTaskUpdated  = "task_updated"
	ActionTaskDeleted  = "task_deleted"
	ActionCommentAdded = "comment_added"
)

// ActivityLog is one immutable audit record of a task mutation. TaskID
// is a plain column rather than a foreign key, and TaskTitle is a
// snapshot taken at write time, so entries stay legible after their
// task is deleted. Rows are only ever inserted.
type ActivityLog struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(64);not null" json:"action"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	TaskTitle string    `gorm:"type:varchar(255);not null" json:"task_title"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
