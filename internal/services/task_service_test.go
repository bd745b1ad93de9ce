package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yugawara/labtrack-api/internal/models"
)

type TaskServiceTestSuite struct {
	ServiceTestSuite
}

// TestCreateResearchTask tests the happy path for research tasks
func (suite *TaskServiceTestSuite) TestCreateResearchTask() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)

	result, err := suite.tasks.Create(CreateTaskInput{
		Title:   "Sequence samples",
		StudyID: &study.ID,
	}, manager)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusPending, result.Task.Status)
	assert.Equal(suite.T(), models.TaskTypeResearch, result.Task.Type)
	assert.Equal(suite.T(), models.TaskPriorityMedium, result.Task.Priority)
	assert.Equal(suite.T(), manager.ID, result.Task.CreatorID)
	// A new open task dilutes the study's progress.
	suite.Require().NotNil(result.StudyProgress)
	assert.Equal(suite.T(), 0.0, *result.StudyProgress)
}

// TestCreateRequiresManager tests the role gate on creation
func (suite *TaskServiceTestSuite) TestCreateRequiresManager() {
	manager := suite.createManager("manager@example.com")
	researcher := suite.createResearcher("r@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)

	_, err := suite.tasks.Create(CreateTaskInput{
		Title:   "Sequence samples",
		StudyID: &study.ID,
	}, researcher)

	assert.ErrorIs(suite.T(), err, ErrManagerRoleRequired)
}

// TestCreateResearchWithoutStudy tests the container requirement
func (suite *TaskServiceTestSuite) TestCreateResearchWithoutStudy() {
	manager := suite.createManager("manager@example.com")

	_, err := suite.tasks.Create(CreateTaskInput{Title: "Orphan"}, manager)
	assert.ErrorIs(suite.T(), err, ErrStudyRequired)

	unknown := uint64(9999)
	_, err = suite.tasks.Create(CreateTaskInput{Title: "Orphan", StudyID: &unknown}, manager)
	assert.ErrorIs(suite.T(), err, ErrStudyNotFound)
}

// TestCreateAdminTask tests that admin tasks skip progress entirely
func (suite *TaskServiceTestSuite) TestCreateAdminTask() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)

	result, err := suite.tasks.Create(CreateTaskInput{
		Title:     "Order reagents",
		Type:      models.TaskTypeAdmin,
		ProjectID: &project.ID,
	}, manager)

	suite.Require().NoError(err)
	assert.Nil(suite.T(), result.StudyProgress)
	assert.Nil(suite.T(), result.ProjectProgress)
	suite.Require().NotNil(result.Task.ProjectID)
	assert.Equal(suite.T(), project.ID, *result.Task.ProjectID)
}

// TestHolderUpdateAllowedFields tests what a holder may touch
func (suite *TaskServiceTestSuite) TestHolderUpdateAllowedFields() {
	manager := suite.createManager("manager@example.com")
	holder := suite.createResearcher("holder@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.assign(task.ID, []uint64{holder.ID}, manager)

	title := "Refined title"
	description := "More detail"
	result, err := suite.tasks.Update(task.ID, UpdateTaskInput{
		Title:       &title,
		Description: &description,
	}, holder)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Refined title", result.Task.Title)
	assert.Equal(suite.T(), "More detail", result.Task.Description)
}

// TestHolderCannotTouchManagerFields tests the field gate for holders
func (suite *TaskServiceTestSuite) TestHolderCannotTouchManagerFields() {
	manager := suite.createManager("manager@example.com")
	holder := suite.createResearcher("holder@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.assign(task.ID, []uint64{holder.ID}, manager)

	high := models.TaskPriorityHigh
	_, err := suite.tasks.Update(task.ID, UpdateTaskInput{Priority: &high}, holder)
	assert.ErrorIs(suite.T(), err, ErrFieldNotAllowed)

	due := time.Now().Add(24 * time.Hour)
	_, err = suite.tasks.Update(task.ID, UpdateTaskInput{DueDate: &due}, holder)
	assert.ErrorIs(suite.T(), err, ErrFieldNotAllowed)
}

// TestHolderCannotCompleteDirectly tests that completion goes through the
// request workflow for holders
func (suite *TaskServiceTestSuite) TestHolderCannotCompleteDirectly() {
	manager := suite.createManager("manager@example.com")
	holder := suite.createResearcher("holder@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.assign(task.ID, []uint64{holder.ID}, manager)

	completed := models.TaskStatusCompleted
	_, err := suite.tasks.Update(task.ID, UpdateTaskInput{Status: &completed}, holder)

	assert.ErrorIs(suite.T(), err, ErrCompleteViaRequest)
}

// TestNonHolderCannotUpdate tests the holder gate
func (suite *TaskServiceTestSuite) TestNonHolderCannotUpdate() {
	manager := suite.createManager("manager@example.com")
	outsider := suite.createResearcher("outsider@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	title := "Hijacked"
	_, err := suite.tasks.Update(task.ID, UpdateTaskInput{Title: &title}, outsider)

	assert.ErrorIs(suite.T(), err, ErrNotTaskHolder)
}

// TestManagerDirectCompletion tests that a manager may set completed
// through a plain update, with stamping
func (suite *TaskServiceTestSuite) TestManagerDirectCompletion() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	completed := models.TaskStatusCompleted
	result, err := suite.tasks.Update(task.ID, UpdateTaskInput{Status: &completed}, manager)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusCompleted, result.Task.Status)
	suite.Require().NotNil(result.Task.CompletedAt)
	suite.Require().NotNil(result.Task.CompletedByID)
	assert.Equal(suite.T(), manager.ID, *result.Task.CompletedByID)
	suite.Require().NotNil(result.StudyProgress)
	assert.Equal(suite.T(), 100.0, *result.StudyProgress)
}

// TestInvalidTransition tests that an in-progress task cannot move back
// to pending
func (suite *TaskServiceTestSuite) TestInvalidTransition() {
	manager := suite.createManager("manager@example.com")
	holder := suite.createResearcher("holder@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.assign(task.ID, []uint64{holder.ID}, manager)

	pending := models.TaskStatusPending
	_, err := suite.tasks.Update(task.ID, UpdateTaskInput{Status: &pending}, manager)

	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

// TestTerminalTasksAreImmutable tests that completed and cancelled tasks
// reject updates
func (suite *TaskServiceTestSuite) TestTerminalTasksAreImmutable() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.tasks.Complete(nil, task.ID, manager)
	suite.Require().NoError(err)

	title := "Too late"
	_, err = suite.tasks.Update(task.ID, UpdateTaskInput{Title: &title}, manager)
	assert.ErrorIs(suite.T(), err, ErrTaskTerminal)
}

// TestCompleteStampsActor tests completion metadata
func (suite *TaskServiceTestSuite) TestCompleteStampsActor() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	before := time.Now().Add(-time.Second)
	result, err := suite.tasks.Complete(nil, task.ID, manager)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.Task.CompletedAt)
	assert.True(suite.T(), result.Task.CompletedAt.After(before))
	suite.Require().NotNil(result.Task.CompletedByID)
	assert.Equal(suite.T(), manager.ID, *result.Task.CompletedByID)

	_, err = suite.tasks.Complete(nil, task.ID, manager)
	assert.ErrorIs(suite.T(), err, ErrTaskAlreadyCompleted)
}

// TestCompleteByHolder tests that a current holder may use the direct
// completion entry point
func (suite *TaskServiceTestSuite) TestCompleteByHolder() {
	manager := suite.createManager("manager@example.com")
	holder := suite.createResearcher("holder@example.com")
	outsider := suite.createResearcher("outsider@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.assign(task.ID, []uint64{holder.ID}, manager)

	_, err := suite.tasks.Complete(nil, task.ID, outsider)
	assert.ErrorIs(suite.T(), err, ErrNotTaskHolder)

	result, err := suite.tasks.Complete(nil, task.ID, holder)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), holder.ID, *result.Task.CompletedByID)
}

// TestSoftDeleteAndRestore tests the delete lifecycle and role gate
func (suite *TaskServiceTestSuite) TestSoftDeleteAndRestore() {
	manager := suite.createManager("manager@example.com")
	researcher := suite.createResearcher("r@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.tasks.SoftDelete(task.ID, researcher)
	assert.ErrorIs(suite.T(), err, ErrManagerRoleRequired)

	_, err = suite.tasks.SoftDelete(task.ID, manager)
	suite.Require().NoError(err)

	_, err = suite.taskRepo.FindByID(task.ID)
	assert.Error(suite.T(), err)

	result, err := suite.tasks.Restore(task.ID, manager)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, result.Task.ID)

	restored, err := suite.taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.Title, restored.Title)
}

// TestRestoreNonDeleted tests restoring a live task
func (suite *TaskServiceTestSuite) TestRestoreNonDeleted() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.tasks.Restore(task.ID, manager)

	assert.True(suite.T(), IsValidation(err))
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
