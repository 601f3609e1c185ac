package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"karaoke/internal/cache"
	"karaoke/internal/errors"
	"karaoke/internal/metrics"
	"karaoke/internal/model"
	"karaoke/internal/repository"
	"karaoke/internal/storage"
)

const songCachePrefix = "songs:list:"

var fileFormatPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// MediaStore holds uploaded song files. Upload returns the public URL.
type MediaStore interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// UploadSongInput carries a catalog upload. FileData is base64 encoded.
// The format comes from FileFormat, else from FileName's extension, else
// model.DefaultFileFormat.
type UploadSongInput struct {
	Title      string
	Artist     string
	Genre      string
	FileData   string
	FileFormat string
	FileName   string
	Duration   int
}

// SongService manages the song catalog.
type SongService interface {
	List(ctx context.Context, filter repository.SongFilter) ([]model.Song, error)
	Get(ctx context.Context, id uint) (*model.Song, error)
	Upload(ctx context.Context, in UploadSongInput) (*model.Song, error)
	OpenFile(ctx context.Context, id uint) (*model.Song, io.ReadCloser, error)
	Import(ctx context.Context, songs []model.Song) (int, error)
}

type songService struct {
	songRepo repository.SongRepository
	media    MediaStore
	cache    cache.Store
	cacheTTL time.Duration
}

// NewSongService creates a new catalog service. A zero cacheTTL disables
// listing cache.
func NewSongService(songRepo repository.SongRepository, media MediaStore, c cache.Store, cacheTTL time.Duration) SongService {
	return &songService{
		songRepo: songRepo,
		media:    media,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func songCacheKey(filter repository.SongFilter) string {
	return songCachePrefix + strings.ToLower(strings.TrimSpace(filter.Search)) + "|" + strings.TrimSpace(filter.Genre)
}

// List returns songs ordered by artist and title.
func (s *songService) List(ctx context.Context, filter repository.SongFilter) ([]model.Song, error) {
	key := songCacheKey(filter)
	if s.cache != nil && s.cacheTTL > 0 {
		if data, _ := s.cache.Get(ctx, key); data != nil {
			var songs []model.Song
			if err := json.Unmarshal(data, &songs); err == nil {
				return songs, nil
			}
		}
	}

	songs, err := s.songRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(songs); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return songs, nil
}

// Get returns a song by id.
func (s *songService) Get(ctx context.Context, id uint) (*model.Song, error) {
	song, err := s.songRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: song %d", errors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("find song: %w", err)
	}
	return song, nil
}

// ResolveFileFormat picks the stored format tag for an upload.
func ResolveFileFormat(format, fileName string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if f == "" {
		f = strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(fileName)), "."))
	}
	if f == "" {
		return model.DefaultFileFormat, nil
	}
	if !fileFormatPattern.MatchString(f) {
		return "", fmt.Errorf("%w: invalid file format %q", errors.ErrValidation, f)
	}
	return f, nil
}

// SongFileKey is the storage key of a song file.
func SongFileKey(artist, title, format string) string {
	clean := strings.NewReplacer("/", "-", "\\", "-")
	return fmt.Sprintf("karaoke/%s_%s.%s", clean.Replace(artist), clean.Replace(title), format)
}

func decodeFileData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	// data URLs as produced by browsers: "data:audio/midi;base64,...."
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: file_data is not valid base64", errors.ErrValidation)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: file_data is empty", errors.ErrValidation)
	}
	return b, nil
}

// Upload stores the file and adds the song to the catalog.
func (s *songService) Upload(ctx context.Context, in UploadSongInput) (*model.Song, error) {
	title := strings.TrimSpace(in.Title)
	artist := strings.TrimSpace(in.Artist)
	if title == "" || artist == "" || in.FileData == "" {
		return nil, fmt.Errorf("%w: title, artist and file_data required", errors.ErrValidation)
	}
	format, err := ResolveFileFormat(in.FileFormat, in.FileName)
	if err != nil {
		return nil, err
	}
	body, err := decodeFileData(in.FileData)
	if err != nil {
		return nil, err
	}
	genre := strings.TrimSpace(in.Genre)
	if genre == "" {
		genre = model.DefaultGenre
	}

	key := SongFileKey(artist, title, format)
	timer := prometheus.NewTimer(metrics.UploadDuration)
	url, err := s.media.Upload(ctx, key, bytes.NewReader(body), "audio/"+format)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("store song file: %w", err)
	}

	song := &model.Song{
		Title:      title,
		Artist:     artist,
		Genre:      genre,
		FileKey:    key,
		FileURL:    url,
		FileFormat: format,
		Duration:   in.Duration,
	}
	if err := s.songRepo.Create(ctx, song); err != nil {
		if rmErr := s.media.Remove(ctx, key); rmErr != nil {
			log.Printf("songs: remove orphaned file %s: %v", key, rmErr)
		}
		return nil, fmt.Errorf("create song: %w", err)
	}

	metrics.SongUploads.WithLabelValues(format).Inc()
	s.invalidate(ctx)
	return song, nil
}

// OpenFile returns the stored file of a song. Imported songs are hosted
// elsewhere and have none. The caller closes the reader.
func (s *songService) OpenFile(ctx context.Context, id uint) (*model.Song, io.ReadCloser, error) {
	song, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if song.FileKey == "" {
		return nil, nil, fmt.Errorf("%w: song %d has no stored file", errors.ErrNotFound, id)
	}

	rc, err := s.media.Open(ctx, song.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: file of song %d", errors.ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("open song file: %w", err)
	}
	return song, rc, nil
}

// Import adds already-hosted songs, skipping rows without a title, an artist
// or a file URL. It returns how many were stored.
func (s *songService) Import(ctx context.Context, songs []model.Song) (int, error) {
	valid := make([]model.Song, 0, len(songs))
	for _, song := range songs {
		song.Title = strings.TrimSpace(song.Title)
		song.Artist = strings.TrimSpace(song.Artist)
		if song.Title == "" || song.Artist == "" || song.FileURL == "" {
			log.Printf("import: skipping song %q by %q: title, artist and file_url required", song.Title, song.Artist)
			continue
		}
		if song.Genre == "" {
			song.Genre = model.DefaultGenre
		}
		format, err := ResolveFileFormat(song.FileFormat, song.FileURL)
		if err != nil {
			log.Printf("import: skipping song %q: %v", song.Title, err)
			continue
		}
		song.ID = 0
		song.FileFormat = format
		valid = append(valid, song)
	}

	if err := s.songRepo.CreateBatch(ctx, valid); err != nil {
		return 0, fmt.Errorf("import songs: %w", err)
	}
	s.invalidate(ctx)
	return len(valid), nil
}

func (s *songService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, songCachePrefix); err != nil {
		log.Printf("songs: cache invalidation failed: %v", err)
	}
}
