package models

import "time"

// CommentKind discriminates the two feed-entry variants: free text and
// file attachments. The kind is fixed at creation time; renderers never
// have to sniff the body to tell them apart.
type CommentKind string

const (
	CommentKindText CommentKind = "text"
	CommentKindFile CommentKind = "file"
)

// Comment is an append-only feed entry on a task. Comments are never
// edited or deleted individually; they disappear only when their task
// is deleted.
type Comment struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	TaskID    uint64      `gorm:"not null;index" json:"task_id"`
	UserID    uint64      `gorm:"not null" json:"user_id"`
	Kind      CommentKind `gorm:"type:varchar(10);not null;default:'text'" json:"kind"`
	Body      string      `gorm:"type:text" json:"body"`
	FileURL   string      `gorm:"type:text" json:"file_url,omitempty"`
	FileName  string      `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	CreatedAt time.Time   `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
