package model

import "time"

// LeaseHours are the lease lengths a table session may be created or renewed with.
var LeaseHours = []int{1, 2, 3, 4, 6, 12, 24}

// DefaultLeaseHours is used when a create request omits hours.
const DefaultLeaseHours = 2

// ValidLeaseHours reports whether h is one of LeaseHours.
func ValidLeaseHours(h int) bool {
	for _, allowed := range LeaseHours {
		if h == allowed {
			return true
		}
	}
	return false
}

// TableSession is a time-limited login issued to a physical karaoke table.
// Records are never erased; deletion clears IsActive so queue items keep
// pointing at a stable table id.
type TableSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TableNumber  int       `json:"table_number" gorm:"not null;index"`
	Login        string    `json:"login" gorm:"size:100;not null;index"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null;index"`
	IsActive     bool      `json:"is_active" gorm:"not null;index"`
	CreatedBy    uint      `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"<-:create;not null"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Live reports whether the session can authenticate at now. An expired
// session is treated exactly like a deactivated one.
func (t *TableSession) Live(now time.Time) bool {
	return t.IsActive && now.Before(t.ExpiresAt)
}
