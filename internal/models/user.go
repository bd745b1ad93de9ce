package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleManager    UserRole = "manager"
	RoleResearcher UserRole = "researcher"
)

type User struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Role        UserRole       `gorm:"type:varchar(20);not null;default:'researcher'" json:"role"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	CreatedTasks  []Task           `gorm:"foreignKey:CreatorID" json:"-"`
	Assignments   []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification   `gorm:"foreignKey:RecipientID" json:"-"`
}

// IsManager reports whether the user holds the privileged role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// AssigneeEligible reports whether the user may be assigned to tasks.
func (u *User) AssigneeEligible() bool {
	return u.Active
}
