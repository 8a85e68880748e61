package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
	ContactStatusClosed     = "closed"

	ContactMessageMaxLength = 2000
)

var ContactStatuses = []string{
	ContactStatusNew,
	ContactStatusInProgress,
	ContactStatusResolved,
	ContactStatusClosed,
}

// Contact is a message submitted through the public contact form.
type Contact struct {
	gorm.Model
	Name          string     `json:"name" gorm:"size:255;not null"`
	Email         string     `json:"email" gorm:"size:255;index;not null"`
	Subject       string     `json:"subject" gorm:"size:255;not null"`
	Message       string     `json:"message" gorm:"type:text;not null"`
	Status        string     `json:"status" gorm:"size:20;index;default:'new'"`
	IsRead        bool       `json:"is_read" gorm:"index;default:false"`
	AdminResponse string     `json:"admin_response" gorm:"type:text"`
	RespondedBy   *uint      `json:"responded_by"`
	RespondedAt   *time.Time `json:"responded_at"`
	IPAddress     string     `json:"ip_address" gorm:"size:64"`
	Responder     *User      `json:"responder,omitempty" gorm:"foreignKey:RespondedBy;constraint:OnDelete:SET NULL"`
}
