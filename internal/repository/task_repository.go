package repository

import (
	"github.com/yugawara/labtrack-api/internal/database"
	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormTaskRepository) WithTx(tx *gorm.DB) TaskRepository {
	if tx == nil {
		return r
	}
	return &GormTaskRepository{db: tx}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDUnscoped finds a task including soft-deleted rows
func (r *GormTaskRepository) FindByIDUnscoped(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Unscoped().First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.StudyID != nil {
		query = query.Where("tasks.study_id = ?", *filter.StudyID)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Type != nil {
		query = query.Where("tasks.type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("tasks.assignee_id = ? OR EXISTS (?)", *filter.AssignedUserID, assignmentSubQuery)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete soft deletes a task
func (r *GormTaskRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// Restore clears the soft-delete marker
func (r *GormTaskRepository) Restore(id uint64) error {
	return r.db.Unscoped().Model(&models.Task{}).Where("id = ?", id).
		Update("deleted_at", nil).Error
}

// CountResearchTasks counts non-deleted research tasks of a study, total and completed
func (r *GormTaskRepository) CountResearchTasks(studyID uint64) (int64, int64, error) {
	base := r.db.Model(&models.Task{}).
		Where("tasks.study_id = ? AND tasks.type = ?", studyID, models.TaskTypeResearch)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := base.Session(&gorm.Session{}).
		Where("tasks.status = ?", models.TaskStatusCompleted).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}

// ReplaceAssignments deletes all assignment rows for the task and bulk-inserts the given set
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, userIDs []uint64) error {
	if err := r.db.Where("task_id = ?", taskID).
		Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return r.db.Create(&assignments).Error
}

// ListAssignments lists the assignment rows of a task
func (r *GormTaskRepository) ListAssignments(taskID uint64) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if err := r.db.Where("task_id = ?", taskID).
		Preload("User").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// HasAssignment reports whether an assignment row exists
func (r *GormTaskRepository) HasAssignment(taskID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	return count > 0, err
}
