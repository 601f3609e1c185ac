package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"karaoke/internal/model"
)

// SongFilter narrows a catalog listing. Empty fields match everything.
type SongFilter struct {
	Search string
	Genre  string
}

// SongRepository defines catalog persistence operations.
type SongRepository interface {
	Create(ctx context.Context, song *model.Song) error
	CreateBatch(ctx context.Context, songs []model.Song) error
	FindByID(ctx context.Context, id uint) (*model.Song, error)
	List(ctx context.Context, filter SongFilter) ([]model.Song, error)
}

type songRepository struct {
	db *gorm.DB
}

// NewSongRepository creates a new song repository.
func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepository{db: db}
}

// Create creates a new song record.
func (r *songRepository) Create(ctx context.Context, song *model.Song) error {
	return r.db.WithContext(ctx).Create(song).Error
}

// CreateBatch inserts many songs in one statement per 100 rows.
func (r *songRepository) CreateBatch(ctx context.Context, songs []model.Song) error {
	if len(songs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&songs, 100).Error
}

// FindByID finds a song by ID.
func (r *songRepository) FindByID(ctx context.Context, id uint) (*model.Song, error) {
	var song model.Song
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&song).Error; err != nil {
		return nil, err
	}
	return &song, nil
}

// List returns songs ordered by artist then title. Search matches title or
// artist case-insensitively.
func (r *songRepository) List(ctx context.Context, filter SongFilter) ([]model.Song, error) {
	q := r.db.WithContext(ctx).Model(&model.Song{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(artist) LIKE ?)", pattern, pattern)
	}
	if g := strings.TrimSpace(filter.Genre); g != "" {
		q = q.Where("genre = ?", g)
	}

	var songs []model.Song
	if err := q.Order("artist ASC, title ASC, id ASC").Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}
