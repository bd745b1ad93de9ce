package repository

import (
	"github.com/yugawara/labtrack-api/internal/database"
	"github.com/yugawara/labtrack-api/internal/models"
	"gorm.io/gorm"
)

// GormRequestRepository is a GORM implementation of RequestRepository
type GormRequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &GormRequestRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormRequestRepository) WithTx(tx *gorm.DB) RequestRepository {
	if tx == nil {
		return r
	}
	return &GormRequestRepository{db: tx}
}

// Create creates a new request
func (r *GormRequestRepository) Create(request *models.TaskRequest) error {
	return r.db.Create(request).Error
}

// FindByID finds a request by ID with optional preloading
func (r *GormRequestRepository) FindByID(id uint64, preload ...string) (*models.TaskRequest, error) {
	var request models.TaskRequest
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// HasPending reports whether a pending request exists for (taskID, requesterID, type)
func (r *GormRequestRepository) HasPending(taskID, requesterID uint64, reqType models.RequestType) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskRequest{}).
		Where("task_id = ? AND requester_id = ? AND type = ? AND status = ?",
			taskID, requesterID, reqType, models.RequestStatusPending).
		Count(&count).Error
	return count > 0, err
}

// List retrieves requests with filtering and pagination
func (r *GormRequestRepository) List(filter RequestFilter) ([]models.TaskRequest, int64, error) {
	var requests []models.TaskRequest

	query := r.db.Model(&models.TaskRequest{})

	if filter.TaskID != nil {
		query = query.Where("task_requests.task_id = ?", *filter.TaskID)
	}
	if filter.RequesterID != nil {
		query = query.Where("task_requests.requester_id = ?", *filter.RequesterID)
	}
	if filter.Status != nil {
		query = query.Where("task_requests.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_requests.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Requester").Preload("Task").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update updates a request
func (r *GormRequestRepository) Update(request *models.TaskRequest) error {
	return r.db.Save(request).Error
}
