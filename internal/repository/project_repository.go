package repository

import (
	"github.com/yugawara/labtrack-api/internal/database"
	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormProjectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	if tx == nil {
		return r
	}
	return &GormProjectRepository{db: tx}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves non-deleted projects with pagination
func (r *GormProjectRepository) List(page, pageSize int) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Preload("Owner").Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// UpdateProgress persists the cached progress value
func (r *GormProjectRepository) UpdateProgress(id uint64, progress float64) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).
		Update("progress", progress).Error
}

// SoftDelete soft deletes a project
func (r *GormProjectRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}
