package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/dto"
	apierrors "github.com/clubware/taskhub/internal/errors"
	"github.com/clubware/taskhub/internal/middleware"
	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/services"
	"github.com/clubware/taskhub/internal/storage"
	"github.com/clubware/taskhub/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// AttachmentRequest is one base64-encoded file in a request body.
type AttachmentRequest struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type"`
	Data        string `json:"data" binding:"required"`
}

func (r AttachmentRequest) toInput() services.AttachmentInput {
	return services.AttachmentInput{
		Name:        r.Name,
		ContentType: r.ContentType,
		Data:        r.Data,
	}
}

// ListTasks returns the tasks visible to the current user
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		AssignedToMe:   c.Query("assigned_to_me") == "true",
		AssignedByMe:   c.Query("assigned_by_me") == "true",
		DueToday:       c.Query("due_today") == "true",
		SortByDeadline: c.Query("sort") == "deadline",
		SortByProgress: c.Query("sort") == "progress",
		Page:           params.Page,
		PageSize:       params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task with its full comment thread.
// Visibility is checked by the RequireTaskView middleware.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	full, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*full))
}

// CreateTask creates a new task assigned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Deadline    time.Time           `json:"deadline" binding:"required"`
		AssigneeIDs []uint64            `json:"assignee_ids" binding:"required"`
		Attachments []AttachmentRequest `json:"attachments"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		AssigneeIDs: req.AssigneeIDs,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, att.toInput())
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Absent fields stay untouched;
// status cannot be sent because it is derived from progress.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Deadline    *time.Time `json:"deadline"`
		Progress    *int       `json:"progress"`
		AssigneeIDs *[]uint64  `json:"assignee_ids"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), actor, task.ID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Progress:    req.Progress,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask permanently deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(actor, task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AddComment appends a text or file comment to the task
func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type AddCommentRequest struct {
		Body       string             `json:"body"`
		Attachment *AttachmentRequest `json:"attachment"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.AddCommentInput{Body: req.Body}
	if req.Attachment != nil {
		att := req.Attachment.toInput()
		input.Attachment = &att
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), actor, task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// SummarizeTask generates and stores an AI status summary
func (h *TaskHandler) SummarizeTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	summary, err := h.taskService.SummarizeTask(c.Request.Context(), actor, task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
	})
}

// DescribeTask drafts a task description from a title with AI
func (h *TaskHandler) DescribeTask(c *gin.Context) {
	type DescribeRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	description, err := h.taskService.DescribeTask(c.Request.Context(), req.Title)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": description,
	})
}

// Dashboard returns the current user's task counters
func (h *TaskHandler) Dashboard(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.taskService.Dashboard(actor)
	if err != nil {
		apierrors.InternalError(c, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrDeadlineRequired),
		errors.Is(err, services.ErrAssigneesRequired),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrCommentEmpty),
		errors.Is(err, services.ErrInvalidAttachment),
		errors.Is(err, storage.ErrAttachmentTooLarge):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAssigneeNotPermitted),
		errors.Is(err, services.ErrNotTaskAssigner),
		errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrNotTaskParticipant):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
