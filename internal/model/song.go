package model

import "time"

const (
	// DefaultGenre is stored when an upload omits the genre.
	DefaultGenre = "no genre"
	// DefaultFileFormat is used when neither a format tag nor a filename extension is given.
	DefaultFileFormat = "kar"
)

// Song is a catalog entry pointing at an uploaded karaoke file.
type Song struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"size:255;not null;index"`
	Artist     string    `json:"artist" gorm:"size:255;not null;index"`
	Genre      string    `json:"genre" gorm:"size:100;not null;index"`
	FileKey    string    `json:"-" gorm:"size:512"`
	FileURL    string    `json:"file_url" gorm:"size:1024"`
	FileFormat string    `json:"file_format" gorm:"size:16;not null"`
	Duration   int       `json:"duration,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"<-:create"`
}
