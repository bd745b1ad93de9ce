package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yugawara/labtrack-api/internal/models"
)

type AssignmentServiceTestSuite struct {
	ServiceTestSuite
}

// TestSetAssignees tests replacing the holder set
func (suite *AssignmentServiceTestSuite) TestSetAssignees() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	b := suite.createResearcher("b@example.com")
	c := suite.createResearcher("c@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	assignments, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{a.ID, b.ID, c.ID}, manager)

	suite.Require().NoError(err)
	assert.Len(suite.T(), assignments, 3)

	reloaded := suite.reloadTask(task.ID)
	suite.Require().NotNil(reloaded.AssigneeID)
	assert.Equal(suite.T(), a.ID, *reloaded.AssigneeID)
	assert.Equal(suite.T(), models.TaskStatusInProgress, reloaded.Status)
}

// TestSetAssigneesReplaces tests that a second call fully replaces the set
func (suite *AssignmentServiceTestSuite) TestSetAssigneesReplaces() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	b := suite.createResearcher("b@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	suite.assign(task.ID, []uint64{a.ID}, manager)

	assignments, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{b.ID}, manager)
	suite.Require().NoError(err)
	suite.Require().Len(assignments, 1)
	assert.Equal(suite.T(), b.ID, assignments[0].UserID)

	reloaded := suite.reloadTask(task.ID)
	suite.Require().NotNil(reloaded.AssigneeID)
	assert.Equal(suite.T(), b.ID, *reloaded.AssigneeID)

	stillHeld, err := suite.assignments.IsHolder(task.ID, a.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), stillHeld)
}

// TestSetAssigneesEmptyClearsBoth tests clearing the holder set
func (suite *AssignmentServiceTestSuite) TestSetAssigneesEmptyClearsBoth() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	suite.assign(task.ID, []uint64{a.ID}, manager)

	assignments, err := suite.assignments.SetAssignees(nil, task.ID, nil, manager)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), assignments)

	reloaded := suite.reloadTask(task.ID)
	assert.Nil(suite.T(), reloaded.AssigneeID)
	// Clearing holders does not demote the task.
	assert.Equal(suite.T(), models.TaskStatusInProgress, reloaded.Status)
}

// TestSetAssigneesDeduplicates tests duplicate ids in the input
func (suite *AssignmentServiceTestSuite) TestSetAssigneesDeduplicates() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	assignments, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{a.ID, a.ID, a.ID}, manager)

	suite.Require().NoError(err)
	assert.Len(suite.T(), assignments, 1)
}

// TestSetAssigneesRequiresManager tests the role gate
func (suite *AssignmentServiceTestSuite) TestSetAssigneesRequiresManager() {
	manager := suite.createManager("manager@example.com")
	researcher := suite.createResearcher("r@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{researcher.ID}, researcher)

	assert.ErrorIs(suite.T(), err, ErrManagerRoleRequired)
}

// TestSetAssigneesRejectsInactiveUser tests assignee eligibility
func (suite *AssignmentServiceTestSuite) TestSetAssigneesRejectsInactiveUser() {
	manager := suite.createManager("manager@example.com")
	inactive := suite.createResearcher("inactive@example.com")
	suite.Require().NoError(suite.db.Model(inactive).Update("active", false).Error)
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{inactive.ID}, manager)

	assert.ErrorIs(suite.T(), err, ErrInvalidAssignee)
	assert.Nil(suite.T(), suite.reloadTask(task.ID).AssigneeID)
}

// TestSetAssigneesRejectsUnknownUser tests unresolvable ids
func (suite *AssignmentServiceTestSuite) TestSetAssigneesRejectsUnknownUser() {
	manager := suite.createManager("manager@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)

	_, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{9999}, manager)

	assert.ErrorIs(suite.T(), err, ErrInvalidAssignee)
}

// TestPromotionOnlyFromPending tests that auto-promotion never touches a
// non-pending status
func (suite *AssignmentServiceTestSuite) TestPromotionOnlyFromPending() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)
	task := suite.createResearchTask("Task", study.ID, manager.ID)
	suite.Require().NoError(suite.db.Model(task).Update("status", models.TaskStatusCancelled).Error)

	_, err := suite.assignments.SetAssignees(nil, task.ID, []uint64{a.ID}, manager)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TaskStatusCancelled, suite.reloadTask(task.ID).Status)
}

// TestIsHolderViaEitherRepresentation tests the dual holder lookup
func (suite *AssignmentServiceTestSuite) TestIsHolderViaEitherRepresentation() {
	manager := suite.createManager("manager@example.com")
	a := suite.createResearcher("a@example.com")
	b := suite.createResearcher("b@example.com")
	project := suite.createProject("Genomics", manager.ID)
	study := suite.createStudy("Cohort A", project.ID)

	// Legacy field only, no assignment rows.
	legacyTask := suite.createResearchTask("Legacy", study.ID, manager.ID)
	suite.Require().NoError(suite.db.Model(legacyTask).Update("assignee_id", a.ID).Error)

	holder, err := suite.assignments.IsHolder(legacyTask.ID, a.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), holder)

	// Assignment row beyond the first: legacy field points at b, yet a
	// still holds the task through the set.
	setTask := suite.createResearchTask("Set", study.ID, manager.ID)
	suite.assign(setTask.ID, []uint64{b.ID, a.ID}, manager)

	holder, err = suite.assignments.IsHolder(setTask.ID, a.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), holder)

	holder, err = suite.assignments.IsHolder(setTask.ID, manager.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), holder)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
