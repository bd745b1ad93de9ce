package repository

import (
	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormStudyRepository is a GORM implementation of StudyRepository
type GormStudyRepository struct {
	db *gorm.DB
}

// NewStudyRepository creates a new StudyRepository
func NewStudyRepository(db *gorm.DB) StudyRepository {
	return &GormStudyRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormStudyRepository) WithTx(tx *gorm.DB) StudyRepository {
	if tx == nil {
		return r
	}
	return &GormStudyRepository{db: tx}
}

// Create creates a new study
func (r *GormStudyRepository) Create(study *models.Study) error {
	return r.db.Create(study).Error
}

// FindByID finds a study by ID with optional preloading
func (r *GormStudyRepository) FindByID(id uint64, preload ...string) (*models.Study, error) {
	var study models.Study
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&study, id).Error; err != nil {
		return nil, err
	}
	return &study, nil
}

// ListByProject lists non-deleted studies of a project
func (r *GormStudyRepository) ListByProject(projectID uint64) ([]models.Study, error) {
	var studies []models.Study
	if err := r.db.Where("project_id = ?", projectID).
		Order("studies.created_at ASC").
		Find(&studies).Error; err != nil {
		return nil, err
	}
	return studies, nil
}

// Update updates a study
func (r *GormStudyRepository) Update(study *models.Study) error {
	return r.db.Save(study).Error
}

// UpdateProgress persists the cached progress value
func (r *GormStudyRepository) UpdateProgress(id uint64, progress float64) error {
	return r.db.Model(&models.Study{}).Where("id = ?", id).
		Update("progress", progress).Error
}

// SoftDelete soft deletes a study
func (r *GormStudyRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Study{}, id).Error
}
