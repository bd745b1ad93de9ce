package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	OwnerID     uint64         `gorm:"not null" json:"owner_id"`
	Progress    float64        `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner   User    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Studies []Study `gorm:"foreignKey:ProjectID" json:"studies,omitempty"`
	Tasks   []Task  `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
