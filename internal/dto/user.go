package dto

import (
	"time"

	"github.com/clubware/taskhub/internal/models"
)

// UserDTO represents a user in API responses. The password hash stays
// server-side; this is the only user shape handlers may serialize.
type UserDTO struct {
	ID        uint64           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Position  string           `json:"position"`
	Domain    models.Domain    `json:"domain"`
	Subdomain models.Subdomain `json:"subdomain,omitempty"`
	Level     int              `json:"level"`
}

// ActivityDTO represents one activity feed entry in API responses
type ActivityDTO struct {
	ID        uint64    `json:"id"`
	Action    string    `json:"action"`
	TaskID    uint64    `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	User      *UserDTO  `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityListResponse represents a paginated activity feed
type ActivityListResponse struct {
	Entries    []ActivityDTO `json:"entries"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Position:  user.Position,
		Domain:    user.Domain,
		Subdomain: user.Subdomain,
		Level:     user.Level,
	}
}

// ToUserDTOs converts a slice of User models
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToActivityDTO converts an ActivityLog model to ActivityDTO
func ToActivityDTO(entry models.ActivityLog) ActivityDTO {
	dto := ActivityDTO{
		ID:        entry.ID,
		Action:    entry.Action,
		TaskID:    entry.TaskID,
		TaskTitle: entry.TaskTitle,
		CreatedAt: entry.CreatedAt,
	}

	if entry.User.ID != 0 {
		user := ToUserDTO(entry.User)
		dto.User = &user
	}

	return dto
}

// ToActivityListResponse converts activity entries to a paginated response
func ToActivityListResponse(entries []models.ActivityLog, page, pageSize int, totalCount int64) ActivityListResponse {
	dtos := make([]ActivityDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = ToActivityDTO(entry)
	}

	return ActivityListResponse{
		Entries:    dtos,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
