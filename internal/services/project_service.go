package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yugawara/labtrack-api/internal/models"
	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService provides container management for projects and studies.
// Structural changes to the study set feed the project's cached progress.
type ProjectService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	studyRepo   repository.StudyRepository
	progress    *ProgressService
}

// NewProjectService creates a new ProjectService
func NewProjectService(db *gorm.DB, projectRepo repository.ProjectRepository, studyRepo repository.StudyRepository, progress *ProgressService) *ProjectService {
	return &ProjectService{
		db:          db,
		projectRepo: projectRepo,
		studyRepo:   studyRepo,
		progress:    progress,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProject creates a new project owned by the actor. Manager only.
func (s *ProjectService) CreateProject(input CreateProjectInput, actor *models.User) (*models.Project, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("project name cannot be empty")
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     actor.ID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project with its studies
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Owner", "Studies")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns non-deleted projects
func (s *ProjectService) ListProjects(page, pageSize int) ([]models.Project, int64, error) {
	return s.projectRepo.List(page, pageSize)
}

// DeleteProject soft deletes a project. Manager only.
func (s *ProjectService) DeleteProject(projectID uint64, actor *models.User) error {
	if !actor.IsManager() {
		return ErrManagerRoleRequired
	}

	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	return s.projectRepo.SoftDelete(projectID)
}

// CreateStudyInput represents input for creating a study
type CreateStudyInput struct {
	Title       string
	Description string
}

// CreateStudy creates a study under a project and refreshes the project's
// cached progress, which now averages over one more study. Manager only.
func (s *ProjectService) CreateStudy(projectID uint64, input CreateStudyInput, actor *models.User) (*models.Study, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRoleRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, NewValidationError("study title cannot be empty")
	}

	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	study := &models.Study{
		ProjectID:   projectID,
		Title:       input.Title,
		Description: input.Description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.studyRepo.WithTx(tx).Create(study); err != nil {
			return fmt.Errorf("failed to create study: %w", err)
		}
		_, err := s.progress.RecomputeProject(tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return study, nil
}

// GetStudy returns a study with its tasks
func (s *ProjectService) GetStudy(studyID uint64) (*models.Study, error) {
	study, err := s.studyRepo.FindByID(studyID, "Project", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyNotFound
		}
		return nil, fmt.Errorf("failed to find study: %w", err)
	}
	return study, nil
}

// DeleteStudy soft deletes a study and refreshes the parent project's
// cached progress, which no longer counts the deleted study. Manager only.
func (s *ProjectService) DeleteStudy(studyID uint64, actor *models.User) error {
	if !actor.IsManager() {
		return ErrManagerRoleRequired
	}

	study, err := s.studyRepo.FindByID(studyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudyNotFound
		}
		return fmt.Errorf("failed to find study: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.studyRepo.WithTx(tx).SoftDelete(studyID); err != nil {
			return fmt.Errorf("failed to delete study: %w", err)
		}
		_, err := s.progress.RecomputeProject(tx, study.ProjectID)
		return err
	})
}
