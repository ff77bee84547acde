package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clubware/taskhub/internal/constants"
	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/dto"
	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/notify"
	"github.com/clubware/taskhub/internal/repository"
	"github.com/clubware/taskhub/internal/services"
	"github.com/clubware/taskhub/internal/storage"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler

	president models.User
	director  models.User
	lead      models.User
	webdev    models.User
	marketer  models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Comment{},
		&models.ActivityLog{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	suite.president = suite.createRosterUser("Aditi Sharma", "aditi@club.example", models.LevelPresident, models.DomainExecutive, "")
	suite.director = suite.createRosterUser("Diego Ruiz", "diego@club.example", models.LevelDirector, models.DomainTechnical, "")
	suite.lead = suite.createRosterUser("Mei Tanaka", "mei@club.example", models.LevelLead, models.DomainTechnical, models.SubdomainWebDev)
	suite.webdev = suite.createRosterUser("Ivy Chen", "ivy@club.example", models.LevelMember, models.DomainTechnical, models.SubdomainWebDev)
	suite.marketer = suite.createRosterUser("Rhea Kapoor", "rhea@club.example", models.LevelMember, models.DomainCorporate, models.SubdomainMarketing)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)

	dir := directory.New(userRepo, time.Minute)
	blobs, err := storage.NewLocalStore(suite.T().TempDir(), "http://localhost:8080")
	suite.Require().NoError(err)

	// No mailer and no AI service in tests
	notifier := notify.NewDispatcher(nil, dir, "http://localhost:8080", quiet)
	activity := services.NewActivityService(activityRepo, quiet)
	taskService := services.NewTaskService(taskRepo, dir, blobs, notifier, activity, nil, quiet)

	suite.handler = NewTaskHandler(taskService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createRosterUser(name, email string, level int, domain models.Domain, subdomain models.Subdomain) models.User {
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
		Position:     "Member",
		Domain:       domain,
		Subdomain:    subdomain,
		Level:        level,
	}
	suite.Require().NoError(suite.db.Create(&user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createAssignedTask(title string, assigner models.User, assignees ...models.User) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		Status:      models.TaskStatusTodo,
		Deadline:    time.Now().Add(72 * time.Hour),
		AssignerID:  assigner.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	for i, assignee := range assignees {
		assignment := models.TaskAssignment{
			TaskID:   task.ID,
			UserID:   assignee.ID,
			Position: i,
		}
		suite.Require().NoError(suite.db.Create(&assignment).Error)
	}

	suite.db.Preload("Assigner").Preload("Assignments").Preload("Assignments.User").First(task, task.ID)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, actor models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyActor, actor)

	return c, w
}

// Helper function to set task context (simulates RequireTaskView middleware)
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	task := suite.createAssignedTask("Prepare hackathon venue", suite.president, suite.director)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.president)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), task.Title, response.Tasks[0].Title)
	assert.Equal(suite.T(), int64(1), response.TotalCount)
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListTasks_MemberSeesOnlyInvolvedTasks tests that the list is
// scoped to tasks the member assigned or was assigned
func (suite *TaskHandlerTestSuite) TestListTasks_MemberSeesOnlyInvolvedTasks() {
	suite.createAssignedTask("Directors only", suite.president, suite.director)
	mine := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.webdev)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), mine.ID, response.Tasks[0].ID)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := suite.createAssignedTask("Prepare hackathon venue", suite.president, suite.director)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, suite.president)
	suite.setTaskContext(c, *task)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.ID, response.ID)
	assert.Equal(suite.T(), task.Title, response.Title)
	assert.Len(suite.T(), response.Assignments, 1)
}

// TestGetTask_NotFoundInContext tests when task is not in context
func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundInContext() {
	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, suite.president)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	requestBody := map[string]interface{}{
		"title":        "New Task",
		"description":  "Task Description",
		"deadline":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"assignee_ids": []uint64{suite.webdev.ID},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.lead)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response.Title)
	assert.Equal(suite.T(), suite.lead.ID, response.AssignerID)
	assert.Equal(suite.T(), models.TaskStatusTodo, response.Status)
	assert.Equal(suite.T(), 0, response.Progress)
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	// Missing required fields: title, deadline
	requestBody := map[string]interface{}{
		"description": "Task Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.lead)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_AssigneeOutsideAuthority tests assignment across domains
func (suite *TaskHandlerTestSuite) TestCreateTask_AssigneeOutsideAuthority() {
	requestBody := map[string]interface{}{
		"title":        "Cross-domain task",
		"deadline":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"assignee_ids": []uint64{suite.marketer.ID},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.director)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_UnknownAssignee tests creation with a non-existent user
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	requestBody := map[string]interface{}{
		"title":        "Ghost task",
		"deadline":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"assignee_ids": []uint64{9999},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.president)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_TitleByAssigner tests a core-field update by the assigner
func (suite *TaskHandlerTestSuite) TestUpdateTask_TitleByAssigner() {
	task := suite.createAssignedTask("Old Title", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"title":       "Updated Title",
		"description": "Updated Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, suite.lead)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Title", response.Title)
	assert.Equal(suite.T(), "Updated Description", response.Description)
}

// TestUpdateTask_ProgressByAssignee tests that an assignee can move
// progress and the status follows it
func (suite *TaskHandlerTestSuite) TestUpdateTask_ProgressByAssignee() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"progress": 100,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100, response.Progress)
	assert.Equal(suite.T(), models.TaskStatusCompleted, response.Status)
}

// TestUpdateTask_CoreFieldByAssignee tests that an assignee cannot
// change assigner-owned fields
func (suite *TaskHandlerTestSuite) TestUpdateTask_CoreFieldByAssignee() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"title": "Hijacked",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestUpdateTask_InvalidRequest tests task update with invalid request
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", []byte("invalid json"), suite.lead)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := suite.createAssignedTask("Task to Delete", suite.lead, suite.webdev)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, suite.lead)
	suite.setTaskContext(c, *task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted successfully", response["message"])

	// Verify the row is permanently gone
	var deletedTask models.Task
	err = suite.db.First(&deletedTask, task.ID).Error
	assert.Error(suite.T(), err)
}

// TestDeleteTask_NotAssigner tests task deletion by an assignee
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotAssigner() {
	task := suite.createAssignedTask("Task to Delete", suite.lead, suite.webdev)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestAddComment_Success tests adding a text comment
func (suite *TaskHandlerTestSuite) TestAddComment_Success() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"body": "Deployed to staging.",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.CommentDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CommentKindText, response.Kind)
	assert.Equal(suite.T(), "Deployed to staging.", response.Body)
}

// TestAddComment_NotParticipant tests commenting by an uninvolved user
func (suite *TaskHandlerTestSuite) TestAddComment_NotParticipant() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"body": "Let me in",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, suite.marketer)
	suite.setTaskContext(c, *task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestAddComment_Empty tests a comment with neither text nor file
func (suite *TaskHandlerTestSuite) TestAddComment_Empty() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"body": "   ",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, suite.lead)
	suite.setTaskContext(c, *task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestAddComment_MalformedAttachment tests an attachment whose payload
// is not decodable base64
func (suite *TaskHandlerTestSuite) TestAddComment_MalformedAttachment() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	requestBody := map[string]interface{}{
		"attachment": map[string]interface{}{
			"name":         "report.pdf",
			"content_type": "application/pdf",
			"data":         "!!!not-base64!!!",
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.Comment{}).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestAddComment_OversizedAttachment tests an attachment payload over
// the size cap
func (suite *TaskHandlerTestSuite) TestAddComment_OversizedAttachment() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	payload := strings.Repeat("A", base64.StdEncoding.EncodedLen(constants.MaxAttachmentSize)+4)
	requestBody := map[string]interface{}{
		"attachment": map[string]interface{}{
			"name":         "recording.mp4",
			"content_type": "video/mp4",
			"data":         payload,
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/comments", body, suite.webdev)
	suite.setTaskContext(c, *task)

	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSummarizeTask_WithoutAIService tests the 503 path when no AI key
// is configured
func (suite *TaskHandlerTestSuite) TestSummarizeTask_WithoutAIService() {
	task := suite.createAssignedTask("Landing page", suite.lead, suite.webdev)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/summary", nil, suite.lead)
	suite.setTaskContext(c, *task)

	suite.handler.SummarizeTask(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestDashboard_Counters tests the dashboard counters
func (suite *TaskHandlerTestSuite) TestDashboard_Counters() {
	suite.createAssignedTask("Assigned to webdev", suite.lead, suite.webdev)
	suite.createAssignedTask("Another for webdev", suite.director, suite.webdev)

	c, w := suite.createAuthContext("GET", "/api/dashboard", nil, suite.webdev)

	suite.handler.Dashboard(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(2), response["assigned_to_me"])
	assert.Equal(suite.T(), float64(0), response["assigned_by_me"])
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
