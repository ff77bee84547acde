package dto

import (
	"time"

	"github.com/clubware/taskhub/internal/models"
)

// TaskAssignmentDTO represents a task assignment in API responses
type TaskAssignmentDTO struct {
	User UserDTO `json:"user"`
}

// CommentDTO represents a task comment in API responses. Kind tells
// renderers whether to show text or a file chip.
type CommentDTO struct {
	ID        uint64             `json:"id"`
	Kind      models.CommentKind `json:"kind"`
	Body      string             `json:"body,omitempty"`
	FileURL   string             `json:"file_url,omitempty"`
	FileName  string             `json:"file_name,omitempty"`
	User      *UserDTO           `json:"user,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Progress    int                 `json:"progress"`
	Deadline    time.Time           `json:"deadline"`
	Summary     string              `json:"summary,omitempty"`
	AssignerID  uint64              `json:"assigner_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assigner    *UserDTO            `json:"assigner,omitempty"`
	Assignments []TaskAssignmentDTO `json:"assignments,omitempty"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Progress    int               `json:"progress"`
	Deadline    time.Time         `json:"deadline"`
	AssignerID  uint64            `json:"assigner_id"`
	Assigner    *UserDTO          `json:"assigner,omitempty"`
	Assignees   []UserDTO         `json:"assignees,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO `json:"tasks"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// Conversion functions

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		Kind:      comment.Kind,
		Body:      comment.Body,
		FileURL:   comment.FileURL,
		FileName:  comment.FileName,
		CreatedAt: comment.CreatedAt,
	}

	if comment.User.ID != 0 {
		user := ToUserDTO(comment.User)
		dto.User = &user
	}

	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Progress:    task.Progress,
		Deadline:    task.Deadline,
		Summary:     task.Summary,
		AssignerID:  task.AssignerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assigner if preloaded
	if task.Assigner.ID != 0 {
		assigner := ToUserDTO(task.Assigner)
		dto.Assigner = &assigner
	}

	// Include assignments if preloaded
	if len(task.Assignments) > 0 {
		dto.Assignments = make([]TaskAssignmentDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignments[i] = TaskAssignmentDTO{
				User: ToUserDTO(assignment.User),
			}
		}
	}

	// Include comments if preloaded
	if len(task.Comments) > 0 {
		dto.Comments = make([]CommentDTO, len(task.Comments))
		for i, comment := range task.Comments {
			dto.Comments[i] = ToCommentDTO(comment)
		}
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Progress:    task.Progress,
		Deadline:    task.Deadline,
		AssignerID:  task.AssignerID,
		CreatedAt:   task.CreatedAt,
	}

	if task.Assigner.ID != 0 {
		assigner := ToUserDTO(task.Assigner)
		dto.Assigner = &assigner
	}

	if len(task.Assignments) > 0 {
		dto.Assignees = make([]UserDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignees[i] = ToUserDTO(assignment.User)
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
