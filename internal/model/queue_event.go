package model

import "time"

// QueueEvent is an audit record of a queue item transition.
// Every transition is recorded, including the initial enqueue.
type QueueEvent struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	QueueItemID uint        `json:"queue_item_id" gorm:"not null;index"`
	TableID     uint        `json:"table_id" gorm:"not null;index"`
	SongID      uint        `json:"song_id" gorm:"not null"`
	FromStatus  QueueStatus `json:"from_status,omitempty" gorm:"type:varchar(20)"`
	ToStatus    QueueStatus `json:"to_status" gorm:"type:varchar(20);not null;index"`
	Actor       Role        `json:"actor" gorm:"type:varchar(20)"`
	CreatedAt   time.Time   `json:"created_at"`
}
