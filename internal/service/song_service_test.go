package service

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karaoke/internal/cache"
	"karaoke/internal/config"
	"karaoke/internal/db"
	"karaoke/internal/errors"
	"karaoke/internal/model"
	"karaoke/internal/repository"
	"karaoke/internal/storage"
)

func newSongService(t *testing.T, media MediaStore) (SongService, repository.SongRepository) {
	t.Helper()
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	repo := repository.NewSongRepository(gdb)
	return NewSongService(repo, media, cache.NewMemory(time.Minute), time.Minute), repo
}

func TestResolveFileFormat(t *testing.T) {
	tests := []struct {
		format   string
		fileName string
		want     string
		wantErr  bool
	}{
		{"mp3", "", "mp3", false},
		{".MID", "song.kar", "mid", false},
		{"", "Queen - Bohemian Rhapsody.KAR", "kar", false},
		{"", "noextension", model.DefaultFileFormat, false},
		{"", "", model.DefaultFileFormat, false},
		{"m p3", "", "", true},
		{"../x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"|"+tt.fileName, func(t *testing.T) {
			got, err := ResolveFileFormat(tt.format, tt.fileName)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSongService_Upload(t *testing.T) {
	media := new(MockMediaStore)
	media.On("Upload", mock.Anything, "karaoke/Queen_Bohemian Rhapsody.kar", mock.Anything, "audio/kar").
		Run(func(args mock.Arguments) {
			body, _ := io.ReadAll(args.Get(2).(io.Reader))
			assert.Equal(t, []byte("MThd"), body)
		}).
		Return("https://cdn.example.com/karaoke/Queen_Bohemian Rhapsody.kar", nil)

	svc, _ := newSongService(t, media)
	song, err := svc.Upload(context.Background(), UploadSongInput{
		Title:    "Bohemian Rhapsody",
		Artist:   "Queen",
		FileData: base64.StdEncoding.EncodeToString([]byte("MThd")),
		FileName: "bohemian.kar",
	})
	require.NoError(t, err)
	assert.NotZero(t, song.ID)
	assert.Equal(t, model.DefaultGenre, song.Genre)
	assert.Equal(t, "kar", song.FileFormat)
	assert.Equal(t, "https://cdn.example.com/karaoke/Queen_Bohemian Rhapsody.kar", song.FileURL)
	media.AssertExpectations(t)
}

func TestSongService_UploadAcceptsDataURL(t *testing.T) {
	media := new(MockMediaStore)
	media.On("Upload", mock.Anything, "karaoke/ABBA_SOS.mid", mock.Anything, "audio/mid").Return("/files/karaoke/ABBA_SOS.mid", nil)

	svc, _ := newSongService(t, media)
	song, err := svc.Upload(context.Background(), UploadSongInput{
		Title:      "SOS",
		Artist:     "ABBA",
		Genre:      "pop",
		FileFormat: "mid",
		FileData:   "data:audio/midi;base64," + base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)
	assert.Equal(t, "pop", song.Genre)
}

func TestSongService_UploadErrors(t *testing.T) {
	media := new(MockMediaStore)
	svc, _ := newSongService(t, media)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadSongInput{Artist: "a", FileData: "eA=="})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.Upload(ctx, UploadSongInput{Title: "t", Artist: "a", FileData: "***"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("bucket gone"))
	_, err = svc.Upload(ctx, UploadSongInput{Title: "t", Artist: "a", FileData: "eA=="})
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", errors.Kind(err))

	songs, err := svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func TestSongService_ListFiltersAndOrder(t *testing.T) {
	svc, repo := newSongService(t, nil)
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, []model.Song{
		{Title: "Yesterday", Artist: "The Beatles", Genre: "rock", FileFormat: "kar"},
		{Title: "Dancing Queen", Artist: "ABBA", Genre: "pop", FileFormat: "kar"},
		{Title: "Bohemian Rhapsody", Artist: "Queen", Genre: "rock", FileFormat: "kar"},
		{Title: "Mamma Mia", Artist: "ABBA", Genre: "pop", FileFormat: "kar"},
	}))

	all, err := svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Dancing Queen", all[0].Title)
	assert.Equal(t, "Mamma Mia", all[1].Title)
	assert.Equal(t, "Queen", all[2].Artist)

	byQueen, err := svc.List(ctx, repository.SongFilter{Search: "QUEEN"})
	require.NoError(t, err)
	assert.Len(t, byQueen, 2)

	rock, err := svc.List(ctx, repository.SongFilter{Genre: "rock"})
	require.NoError(t, err)
	assert.Len(t, rock, 2)
}

func TestSongService_ListCacheInvalidatedByUpload(t *testing.T) {
	media := new(MockMediaStore)
	media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("/files/x", nil)
	svc, repo := newSongService(t, media)
	ctx := context.Background()

	songs, err := svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	assert.Empty(t, songs)

	// written behind the service's back: the cached listing is served
	require.NoError(t, repo.Create(ctx, &model.Song{Title: "a", Artist: "a", Genre: "g", FileFormat: "kar"}))
	songs, err = svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	assert.Empty(t, songs)

	_, err = svc.Upload(ctx, UploadSongInput{Title: "b", Artist: "b", FileData: "eA=="})
	require.NoError(t, err)
	songs, err = svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	assert.Len(t, songs, 2)
}

func TestSongService_ImportSkipsInvalidRows(t *testing.T) {
	svc, _ := newSongService(t, nil)
	ctx := context.Background()

	n, err := svc.Import(ctx, []model.Song{
		{Title: "Yesterday", Artist: "The Beatles", FileURL: "https://cdn/yesterday.mid"},
		{Title: "", Artist: "Nobody", FileURL: "https://cdn/x.kar"},
		{Title: "No file", Artist: "Nobody"},
		{Title: "SOS", Artist: "ABBA", Genre: "pop", FileURL: "https://cdn/sos", FileFormat: "mp3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	songs, err := svc.List(ctx, repository.SongFilter{})
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "mp3", songs[0].FileFormat)
	assert.Equal(t, "mid", songs[1].FileFormat)
	assert.Equal(t, model.DefaultGenre, songs[1].Genre)

	got, err := svc.Get(ctx, songs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "SOS", got.Title)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSongService_UploadRemovesFileWhenInsertFails(t *testing.T) {
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	media := new(MockMediaStore)
	media.On("Upload", mock.Anything, "karaoke/ABBA_SOS.kar", mock.Anything, "audio/kar").Return("/files/karaoke/ABBA_SOS.kar", nil)
	media.On("Remove", mock.Anything, "karaoke/ABBA_SOS.kar").Return(nil)
	svc := NewSongService(repository.NewSongRepository(gdb), media, cache.NewMemory(time.Minute), time.Minute)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Upload(context.Background(), UploadSongInput{Title: "SOS", Artist: "ABBA", FileData: "eA=="})
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", errors.Kind(err))
	media.AssertExpectations(t)
}

func TestSongService_OpenFile(t *testing.T) {
	media, err := storage.New(&config.StorageConfig{Provider: "local", Root: t.TempDir(), Bucket: "files"})
	require.NoError(t, err)
	svc, repo := newSongService(t, media)
	ctx := context.Background()

	song, err := svc.Upload(ctx, UploadSongInput{
		Title:    "Waterloo",
		Artist:   "ABBA",
		FileData: base64.StdEncoding.EncodeToString([]byte("MThd")),
	})
	require.NoError(t, err)

	got, rc, err := svc.OpenFile(ctx, song.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("MThd"), data)
	assert.Equal(t, "kar", got.FileFormat)

	t.Run("unknown song", func(t *testing.T) {
		_, _, err := svc.OpenFile(ctx, 999)
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("imported song has no stored file", func(t *testing.T) {
		hosted := &model.Song{Title: "SOS", Artist: "ABBA", Genre: "pop", FileURL: "https://cdn/sos.kar", FileFormat: "kar"}
		require.NoError(t, repo.Create(ctx, hosted))
		_, _, err := svc.OpenFile(ctx, hosted.ID)
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("file missing from storage", func(t *testing.T) {
		require.NoError(t, media.Remove(ctx, song.FileKey))
		_, _, err := svc.OpenFile(ctx, song.ID)
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}
