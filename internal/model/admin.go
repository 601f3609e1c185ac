package model

import "time"

// Role tags a session with the kind of account that opened it.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTable Role = "table"
)

// AdminAccount represents a venue operator credential.
type AdminAccount struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Login        string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
