package model

import "time"

// QueueStatus represents the status of a song request.
type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusPlaying   QueueStatus = "playing"
	QueueStatusDone      QueueStatus = "done"
	QueueStatusCancelled QueueStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s QueueStatus) Valid() bool {
	switch s {
	case QueueStatusPending, QueueStatusPlaying, QueueStatusDone, QueueStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s QueueStatus) Terminal() bool {
	return s == QueueStatusDone || s == QueueStatusCancelled
}

// CanMoveTo reports whether s -> next is a forward transition.
func (s QueueStatus) CanMoveTo(next QueueStatus) bool {
	switch s {
	case QueueStatusPending:
		return next == QueueStatusPlaying || next == QueueStatusCancelled
	case QueueStatusPlaying:
		return next == QueueStatusDone || next == QueueStatusCancelled
	}
	return false
}

// QueueItem is one song request submitted by a table.
type QueueItem struct {
	ID       uint        `json:"id" gorm:"primaryKey"`
	SongID   uint        `json:"song_id" gorm:"not null;index"`
	TableID  uint        `json:"table_id" gorm:"not null;index"`
	Status   QueueStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AddedAt  time.Time   `json:"added_at" gorm:"<-:create;not null;index;precision:6"`
	PlayedAt *time.Time  `json:"played_at" gorm:"precision:6"`

	// Relations
	Song  Song         `json:"song" gorm:"foreignKey:SongID"`
	Table TableSession `json:"-" gorm:"foreignKey:TableID"`
}

// QueueEntry is a queue item joined with its song and table number, as shown
// to the operator and the table display.
type QueueEntry struct {
	QueueItem
	TableNumber int `json:"table_number"`
}
