package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/yugawara/labtrack-api/internal/repository"
	"gorm.io/gorm"
)

// ProgressService maintains the cached progress percentages on studies and
// projects. Progress is derived state recomputed on every research-task
// mutation rather than on read: dashboards read far more often than tasks
// change, so the recomputation cost is paid once per write.
type ProgressService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	studyRepo   repository.StudyRepository
	taskRepo    repository.TaskRepository
}

// NewProgressService creates a new ProgressService
func NewProgressService(db *gorm.DB, projectRepo repository.ProjectRepository, studyRepo repository.StudyRepository, taskRepo repository.TaskRepository) *ProgressService {
	return &ProgressService{
		db:          db,
		projectRepo: projectRepo,
		studyRepo:   studyRepo,
		taskRepo:    taskRepo,
	}
}

// RecomputeStudy recalculates and persists a study's progress from its
// non-deleted research tasks. Admin tasks never contribute. The tx
// parameter joins an open transaction; nil runs against the base handle.
func (s *ProgressService) RecomputeStudy(tx *gorm.DB, studyID uint64) (float64, error) {
	studyRepo := s.studyRepo.WithTx(tx)

	if _, err := studyRepo.FindByID(studyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrStudyNotFound
		}
		return 0, fmt.Errorf("failed to find study: %w", err)
	}

	total, completed, err := s.taskRepo.WithTx(tx).CountResearchTasks(studyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count research tasks: %w", err)
	}

	progress := 0.0
	if total > 0 {
		progress = roundPercent(float64(completed) / float64(total) * 100)
	}

	if err := studyRepo.UpdateProgress(studyID, progress); err != nil {
		return 0, fmt.Errorf("failed to persist study progress: %w", err)
	}

	return progress, nil
}

// RecomputeProject recalculates and persists a project's progress as the
// mean of its non-deleted studies' persisted progress values.
func (s *ProgressService) RecomputeProject(tx *gorm.DB, projectID uint64) (float64, error) {
	projectRepo := s.projectRepo.WithTx(tx)

	if _, err := projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProjectNotFound
		}
		return 0, fmt.Errorf("failed to find project: %w", err)
	}

	studies, err := s.studyRepo.WithTx(tx).ListByProject(projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to list studies: %w", err)
	}

	progress := 0.0
	if len(studies) > 0 {
		var sum float64
		for _, study := range studies {
			sum += study.Progress
		}
		progress = roundPercent(sum / float64(len(studies)))
	}

	if err := projectRepo.UpdateProgress(projectID, progress); err != nil {
		return 0, fmt.Errorf("failed to persist project progress: %w", err)
	}

	return progress, nil
}

// Propagate recomputes a study's progress and then its parent project's,
// in one transaction. When the caller already holds an open transaction it
// is reused, so a task mutation and its progress update commit atomically;
// a concurrent read never observes a torn aggregate.
func (s *ProgressService) Propagate(tx *gorm.DB, studyID uint64) (studyProgress, projectProgress float64, err error) {
	if tx != nil {
		return s.propagate(tx, studyID)
	}

	err = s.db.Transaction(func(inner *gorm.DB) error {
		studyProgress, projectProgress, err = s.propagate(inner, studyID)
		return err
	})
	return studyProgress, projectProgress, err
}

func (s *ProgressService) propagate(tx *gorm.DB, studyID uint64) (float64, float64, error) {
	studyProgress, err := s.RecomputeStudy(tx, studyID)
	if err != nil {
		return 0, 0, err
	}

	study, err := s.studyRepo.WithTx(tx).FindByID(studyID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reload study: %w", err)
	}

	projectProgress, err := s.RecomputeProject(tx, study.ProjectID)
	if err != nil {
		return 0, 0, err
	}

	return studyProgress, projectProgress, nil
}

// roundPercent rounds to 2 decimal places, the precision stored and
// transmitted for all percentages.
func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
