package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/suite"
	"github.com/yugawara/labtrack-api/internal/logger"
	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/push"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingTransport captures pushed messages and optionally fails every
// push.
type recordingTransport struct {
	mu       sync.Mutex
	messages []push.Message
	err      error
}

func (t *recordingTransport) Push(_ context.Context, msg push.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.messages = append(t.messages, msg)
	return nil
}

func (t *recordingTransport) Close() error { return nil }

func (t *recordingTransport) pushed() []push.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]push.Message(nil), t.messages...)
}

// ServiceTestSuite wires every service over an in-memory SQLite database.
// Individual test suites embed it.
type ServiceTestSuite struct {
	suite.Suite
	db *gorm.DB

	projectRepo repository.ProjectRepository
	studyRepo   repository.StudyRepository
	taskRepo    repository.TaskRepository
	requestRepo repository.RequestRepository
	notifRepo   repository.NotificationRepository
	userRepo    repository.UserRepository

	transport *recordingTransport

	progress      *ProgressService
	assignments   *AssignmentService
	projects      *ProjectService
	tasks         *TaskService
	notifications *NotificationService
	requests      *RequestService
}

// SetupTest runs before each test
func (suite *ServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Each in-memory SQLite connection is its own database, so the pool
	// must stay at a single connection.
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Study{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskRequest{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	suite.projectRepo = repository.NewProjectRepository(suite.db)
	suite.studyRepo = repository.NewStudyRepository(suite.db)
	suite.taskRepo = repository.NewTaskRepository(suite.db)
	suite.requestRepo = repository.NewRequestRepository(suite.db)
	suite.notifRepo = repository.NewNotificationRepository(suite.db)
	suite.userRepo = repository.NewUserRepository(suite.db)

	suite.transport = &recordingTransport{}
	log := logger.NewNop()

	suite.progress = NewProgressService(suite.db, suite.projectRepo, suite.studyRepo, suite.taskRepo)
	suite.assignments = NewAssignmentService(suite.db, suite.taskRepo, suite.userRepo)
	suite.projects = NewProjectService(suite.db, suite.projectRepo, suite.studyRepo, suite.progress)
	suite.tasks = NewTaskService(suite.db, suite.taskRepo, suite.studyRepo, suite.projectRepo, suite.assignments, suite.progress)
	suite.notifications = NewNotificationService(suite.notifRepo, suite.transport, log)
	suite.requests = NewRequestService(suite.db, suite.requestRepo, suite.taskRepo, suite.userRepo, suite.assignments, suite.tasks, suite.notifications, log)
}

// TearDownTest runs after each test
func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *ServiceTestSuite) createManager(email string) *models.User {
	user := &models.User{
		Email:       email,
		DisplayName: email,
		Role:        models.RoleManager,
		Active:      true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ServiceTestSuite) createResearcher(email string) *models.User {
	user := &models.User{
		Email:       email,
		DisplayName: email,
		Role:        models.RoleResearcher,
		Active:      true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ServiceTestSuite) createProject(name string, ownerID uint64) *models.Project {
	project := &models.Project{
		Name:    name,
		OwnerID: ownerID,
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	return project
}

func (suite *ServiceTestSuite) createStudy(title string, projectID uint64) *models.Study {
	study := &models.Study{
		ProjectID: projectID,
		Title:     title,
	}
	suite.Require().NoError(suite.db.Create(study).Error)
	return study
}

func (suite *ServiceTestSuite) createResearchTask(title string, studyID, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		Type:      models.TaskTypeResearch,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
		StudyID:   &studyID,
		CreatorID: creatorID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *ServiceTestSuite) createAdminTask(title string, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		Type:      models.TaskTypeAdmin,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
		CreatorID: creatorID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *ServiceTestSuite) assign(taskID uint64, userIDs []uint64, manager *models.User) {
	_, err := suite.assignments.SetAssignees(nil, taskID, userIDs, manager)
	suite.Require().NoError(err)
}

func (suite *ServiceTestSuite) reloadTask(taskID uint64) *models.Task {
	task, err := suite.taskRepo.FindByID(taskID)
	suite.Require().NoError(err)
	return task
}

func (suite *ServiceTestSuite) reloadStudy(studyID uint64) *models.Study {
	study, err := suite.studyRepo.FindByID(studyID)
	suite.Require().NoError(err)
	return study
}

func (suite *ServiceTestSuite) reloadProject(projectID uint64) *models.Project {
	project, err := suite.projectRepo.FindByID(projectID)
	suite.Require().NoError(err)
	return project
}

func (suite *ServiceTestSuite) notificationsFor(recipientID uint64) []models.Notification {
	items, _, err := suite.notifRepo.ListByRecipient(recipientID, false, 1, 50)
	suite.Require().NoError(err)
	return items
}
