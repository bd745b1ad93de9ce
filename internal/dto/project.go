package dto

import (
	"time"

	"github.com/yugawara/labtrack-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     uint64     `json:"owner_id"`
	Progress    float64    `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	Owner       *UserDTO   `json:"owner,omitempty"`
	Studies     []StudyDTO `json:"studies,omitempty"`
}

// StudyDTO represents a study in API responses
type StudyDTO struct {
	ID          uint64    `json:"id"`
	ProjectID   uint64    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Progress    float64   `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

// ToStudyDTO converts a Study model to StudyDTO
func ToStudyDTO(study models.Study) StudyDTO {
	return StudyDTO{
		ID:          study.ID,
		ProjectID:   study.ProjectID,
		Title:       study.Title,
		Description: study.Description,
		Progress:    study.Progress,
		CreatedAt:   study.CreatedAt,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		Progress:    project.Progress,
		CreatedAt:   project.CreatedAt,
	}

	if project.Owner.ID != 0 {
		owner := ToUserDTO(project.Owner)
		dto.Owner = &owner
	}

	if len(project.Studies) > 0 {
		dto.Studies = make([]StudyDTO, len(project.Studies))
		for i, study := range project.Studies {
			dto.Studies[i] = ToStudyDTO(study)
		}
	}

	return dto
}
