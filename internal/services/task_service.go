package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/notify"
	"github.com/clubware/taskhub/internal/policy"
	"github.com/clubware/taskhub/internal/repository"
	"github.com/clubware/taskhub/internal/storage"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrDeadlineRequired       = errors.New("deadline is required")
	ErrAssigneesRequired      = errors.New("at least one assignee is required")
	ErrInvalidTaskAssignee    = errors.New("one or more assignees do not exist")
	ErrAssigneeNotPermitted   = errors.New("you may not assign tasks to one or more of these users")
	ErrNotTaskAssigner        = errors.New("only the task assigner can perform this action")
	ErrTaskPermissionDenied   = errors.New("you do not have permission to modify this field")
	ErrNotTaskParticipant     = errors.New("only the assigner or an assignee can comment")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
	ErrCommentEmpty           = errors.New("comment needs text or a file")
	ErrInvalidAttachment      = errors.New("attachment payload is invalid")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// taskPreloads loads everything the API returns for a single task.
var taskPreloads = []string{"Assigner", "Assignments", "Assignments.User", "Comments", "Comments.User"}

// TaskService is the single write path for tasks. Every mutation is
// authorized here against the policy rules, so a buggy or bypassed
// client cannot reach further than its role allows.
type TaskService struct {
	taskRepo  repository.TaskRepository
	dir       *directory.Directory
	blobs     storage.BlobStore
	notifier  *notify.Dispatcher
	activity  *ActivityService
	aiService *AIService
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService. aiService may be nil when
// no API key is configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	dir *directory.Directory,
	blobs storage.BlobStore,
	notifier *notify.Dispatcher,
	activity *ActivityService,
	aiService *AIService,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		dir:       dir,
		blobs:     blobs,
		notifier:  notifier,
		activity:  activity,
		aiService: aiService,
		logger:    logger,
	}
}

// AttachmentInput is one uploaded file, base64-encoded by the client.
type AttachmentInput struct {
	Name        string
	ContentType string
	Data        string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Deadline    time.Time
	AssigneeIDs []uint64
	Attachments []AttachmentInput
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status         *models.TaskStatus
	AssignedToMe   bool
	AssignedByMe   bool
	DueToday       bool
	SortByDeadline bool
	SortByProgress bool
	Page           int
	PageSize       int
}

// UpdateTaskInput represents input for updating a task. Nil fields are
// left untouched. Status is absent on purpose; it is derived from
// progress and never accepted from clients.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Progress    *int
	AssigneeIDs *[]uint64
}

// AddCommentInput carries either comment text or one file attachment.
type AddCommentInput struct {
	Body       string
	Attachment *AttachmentInput
}

// ListTasks returns the tasks the actor is allowed to see, newest
// first. Presidium members see every task, everyone else only tasks
// they assigned or were assigned. A storage failure yields an empty
// list rather than an error.
func (s *TaskService) ListTasks(actor models.User, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Page:           input.Page,
		PageSize:       input.PageSize,
		SortByDeadline: input.SortByDeadline,
		SortByProgress: input.SortByProgress,
	}

	if actor.Level > models.LevelVicePresident {
		filter.InvolvedUserID = &actor.ID
	}

	if input.Status != nil {
		filter.Status = input.Status
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &actor.ID
	}
	if input.AssignedByMe {
		filter.AssignerID = &actor.ID
	}
	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DeadlineFrom = &startOfDay
		filter.DeadlineTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		s.logger.Warn("task list query failed, serving empty list",
			"user_id", actor.ID, "error", err)
		return []models.Task{}, 0, nil
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task assigned by the actor. Every assignee must
// be within the actor's assignable range. Attachments are uploaded one
// by one and become file comments; a failed upload is logged and
// skipped without failing the creation.
func (s *TaskService) CreateTask(ctx context.Context, actor models.User, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Deadline.IsZero() {
		return nil, ErrDeadlineRequired
	}

	assigneeIDs := uniqueUint64(input.AssigneeIDs)
	if len(assigneeIDs) == 0 {
		return nil, ErrAssigneesRequired
	}

	if err := s.validateAssignees(actor, assigneeIDs); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.DeriveStatus(0),
		Progress:    0,
		Deadline:    input.Deadline,
		AssignerID:  actor.ID,
	}

	if err := s.taskRepo.CreateWithAssignees(task, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.uploadAttachments(ctx, actor, task, input.Attachments)

	s.activity.Record(actor.ID, models.ActionTaskCreated, task.ID, task.Title)

	created, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.notifier.TaskAssigned(ctx, created, assigneeIDs)

	return created, nil
}

// UpdateTask applies a partial update on behalf of the actor. Core
// fields stay with the assigner, progress with assignees, and the
// status column is recomputed from progress. Only members newly added
// to the assignee set are notified.
func (s *TaskService) UpdateTask(ctx context.Context, actor models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	originalIDs := task.AssigneeIDs()

	if input.Title != nil {
		if !policy.CanMutate(actor, *task, policy.FieldTitle) {
			return nil, ErrTaskPermissionDenied
		}
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		if !policy.CanMutate(actor, *task, policy.FieldDescription) {
			return nil, ErrTaskPermissionDenied
		}
		task.Description = *input.Description
	}
	if input.Deadline != nil {
		if !policy.CanMutate(actor, *task, policy.FieldDeadline) {
			return nil, ErrTaskPermissionDenied
		}
		task.Deadline = *input.Deadline
	}
	if input.Progress != nil {
		if !policy.CanMutate(actor, *task, policy.FieldProgress) {
			return nil, ErrTaskPermissionDenied
		}
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, ErrInvalidProgress
		}
		task.Progress = *input.Progress
		task.Status = models.DeriveStatus(task.Progress)
	}

	var newcomers []uint64
	if input.AssigneeIDs != nil {
		if !policy.CanMutate(actor, *task, policy.FieldAssignees) {
			return nil, ErrTaskPermissionDenied
		}

		assigneeIDs := uniqueUint64(*input.AssigneeIDs)
		if len(assigneeIDs) == 0 {
			return nil, ErrAssigneesRequired
		}

		// Only additions need to pass the assignability check; members
		// already on the task stay even if the roster shifted under them.
		newcomers = subtractUint64(assigneeIDs, originalIDs)
		if err := s.validateAssignees(actor, newcomers); err != nil {
			return nil, err
		}

		if err := s.taskRepo.ReplaceAssignees(task.ID, assigneeIDs); err != nil {
			return nil, fmt.Errorf("failed to update assignees: %w", err)
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.activity.Record(actor.ID, models.ActionTaskUpdated, task.ID, task.Title)

	updated, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if len(newcomers) > 0 {
		s.notifier.TaskAssigned(ctx, updated, newcomers)
	}

	return updated, nil
}

// DeleteTask permanently removes a task. Only the assigner may delete,
// and the title is captured first so the activity feed stays readable
// after the row is gone.
func (s *TaskService) DeleteTask(actor models.User, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanDelete(actor, *task) {
		return ErrNotTaskAssigner
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.activity.Record(actor.ID, models.ActionTaskDeleted, taskID, task.Title)

	return nil
}

// AddComment appends a text or file comment to the task feed. Comments
// are inserted, never merged, so two members commenting at once both
// land in the thread.
func (s *TaskService) AddComment(ctx context.Context, actor models.User, taskID uint64, input AddCommentInput) (*models.Comment, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanComment(actor, *task) {
		return nil, ErrNotTaskParticipant
	}

	comment := &models.Comment{
		TaskID: task.ID,
		UserID: actor.ID,
	}

	switch {
	case input.Attachment != nil:
		data, err := storage.DecodePayload(input.Attachment.Data)
		if err != nil {
			if errors.Is(err, storage.ErrAttachmentTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
		}

		objectPath := storage.ObjectPath(task.ID, input.Attachment.Name)
		url, err := s.blobs.Upload(ctx, objectPath, input.Attachment.ContentType, data)
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment: %w", err)
		}

		comment.Kind = models.CommentKindFile
		comment.FileURL = url
		comment.FileName = input.Attachment.Name

	case strings.TrimSpace(input.Body) != "":
		comment.Kind = models.CommentKindText
		comment.Body = strings.TrimSpace(input.Body)

	default:
		return nil, ErrCommentEmpty
	}

	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.activity.Record(actor.ID, models.ActionCommentAdded, task.ID, task.Title)

	comment.User = actor
	return comment, nil
}

// SummarizeTask asks the AI service for a fresh status summary and
// stores it on the task.
func (s *TaskService) SummarizeTask(ctx context.Context, actor models.User, taskID uint64) (string, error) {
	if s.aiService == nil {
		return "", ErrAIServiceNotConfigured
	}

	task, err := s.taskRepo.FindByID(taskID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTaskNotFound
		}
		return "", fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanView(actor, *task) {
		return "", ErrTaskNotFound
	}

	comments, err := s.taskRepo.ListComments(task.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load comments: %w", err)
	}

	summary, err := s.aiService.SummarizeTask(ctx, task, comments)
	if err != nil {
		return "", fmt.Errorf("failed to summarize task: %w", err)
	}

	task.Summary = summary
	if err := s.taskRepo.Update(task); err != nil {
		return "", fmt.Errorf("failed to store summary: %w", err)
	}

	return summary, nil
}

// DescribeTask drafts a description for a task title via the AI
// service.
func (s *TaskService) DescribeTask(ctx context.Context, title string) (string, error) {
	if s.aiService == nil {
		return "", ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(title) == "" {
		return "", ErrTitleRequired
	}

	description, err := s.aiService.DescribeTask(ctx, strings.TrimSpace(title))
	if err != nil {
		return "", fmt.Errorf("failed to describe task: %w", err)
	}

	return description, nil
}

// DashboardSummary aggregates task counts over the actor's visible
// tasks for the home screen.
type DashboardSummary struct {
	AssignedToMe int64 `json:"assigned_to_me"`
	AssignedByMe int64 `json:"assigned_by_me"`
	Todo         int64 `json:"todo"`
	InProgress   int64 `json:"in_progress"`
	Completed    int64 `json:"completed"`
	DueToday     int64 `json:"due_today"`
	DueThisWeek  int64 `json:"due_this_week"`
	Overdue      int64 `json:"overdue"`

	// RecentActivity is filled for presidium members only.
	RecentActivity []models.ActivityLog `json:"recent_activity,omitempty"`
}

// Dashboard counts the actor's visible tasks by status and urgency.
// Presidium members additionally get the latest activity entries.
func (s *TaskService) Dashboard(actor models.User) (*DashboardSummary, error) {
	count := func(filter repository.TaskFilter) (int64, error) {
		filter.Page = 1
		filter.PageSize = 1
		_, total, err := s.taskRepo.List(filter)
		return total, err
	}

	// Visibility scope matches ListTasks: presidium sees everything.
	visible := func() repository.TaskFilter {
		var filter repository.TaskFilter
		if actor.Level > models.LevelVicePresident {
			filter.InvolvedUserID = &actor.ID
		}
		return filter
	}

	var (
		summary DashboardSummary
		err     error
	)

	if summary.AssignedToMe, err = count(repository.TaskFilter{AssignedUserID: &actor.ID}); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	if summary.AssignedByMe, err = count(repository.TaskFilter{AssignerID: &actor.ID}); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	for _, c := range []struct {
		status models.TaskStatus
		out    *int64
	}{
		{models.TaskStatusTodo, &summary.Todo},
		{models.TaskStatusInProgress, &summary.InProgress},
		{models.TaskStatusCompleted, &summary.Completed},
	} {
		filter := visible()
		status := c.status
		filter.Status = &status
		if *c.out, err = count(filter); err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	endOfWeek := startOfDay.Add(7 * 24 * time.Hour)

	dueToday := visible()
	dueToday.DeadlineFrom = &startOfDay
	dueToday.DeadlineTo = &endOfDay
	if summary.DueToday, err = count(dueToday); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	dueThisWeek := visible()
	dueThisWeek.DeadlineFrom = &startOfDay
	dueThisWeek.DeadlineTo = &endOfWeek
	if summary.DueThisWeek, err = count(dueThisWeek); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	// Overdue means past deadline and not completed.
	completed := models.TaskStatusCompleted
	overdue := visible()
	overdue.DeadlineTo = &now
	overdue.StatusNot = &completed
	if summary.Overdue, err = count(overdue); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	if policy.CanViewActivity(actor) {
		entries, _, err := s.activity.List(1, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
		summary.RecentActivity = entries
	}

	return &summary, nil
}

// validateAssignees checks that every ID exists in the directory and
// sits inside the actor's assignable range.
func (s *TaskService) validateAssignees(actor models.User, assigneeIDs []uint64) error {
	for _, id := range assigneeIDs {
		target, ok, err := s.dir.ByID(id)
		if err != nil {
			return fmt.Errorf("failed to resolve assignee %d: %w", id, err)
		}
		if !ok {
			return ErrInvalidTaskAssignee
		}
		if !policy.CanAssign(actor, target) {
			return ErrAssigneeNotPermitted
		}
	}
	return nil
}

// uploadAttachments pushes each file to blob storage and appends a
// file comment for it. Uploads run one at a time; a failed file is
// logged and skipped so the remaining files still make it.
func (s *TaskService) uploadAttachments(ctx context.Context, actor models.User, task *models.Task, attachments []AttachmentInput) {
	for _, att := range attachments {
		data, err := storage.DecodePayload(att.Data)
		if err != nil {
			s.logger.Warn("skipping undecodable attachment",
				"task_id", task.ID, "file", att.Name, "error", err)
			continue
		}

		objectPath := storage.ObjectPath(task.ID, att.Name)
		url, err := s.blobs.Upload(ctx, objectPath, att.ContentType, data)
		if err != nil {
			s.logger.Warn("skipping failed attachment upload",
				"task_id", task.ID, "file", att.Name, "error", err)
			continue
		}

		comment := &models.Comment{
			TaskID:   task.ID,
			UserID:   actor.ID,
			Kind:     models.CommentKindFile,
			FileURL:  url,
			FileName: att.Name,
		}
		if err := s.taskRepo.AddComment(comment); err != nil {
			s.logger.Warn("failed to record attachment comment",
				"task_id", task.ID, "file", att.Name, "error", err)
		}
	}
}

// subtractUint64 returns the values of a that are not in b, keeping
// a's order.
func subtractUint64(a, b []uint64) []uint64 {
	inB := make(map[uint64]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	var out []uint64
	for _, v := range a {
		if _, exists := inB[v]; !exists {
			out = append(out, v)
		}
	}
	return out
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
