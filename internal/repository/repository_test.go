package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"karaoke/internal/db"
	"karaoke/internal/model"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	return gdb
}

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedTable(t *testing.T, repo TableRepository, number int, login string, expires time.Time, active bool) *model.TableSession {
	t.Helper()
	table := &model.TableSession{
		TableNumber:  number,
		Login:        login,
		PasswordHash: "x",
		ExpiresAt:    expires,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), table))
	if !active {
		require.NoError(t, repo.Deactivate(context.Background(), table.ID))
	}
	return table
}

func TestTableRepository_FindLiveByLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewTableRepository(newSQLiteDB(t))
	now := time.Now().UTC()

	seedTable(t, repo, 1, "t1", now.Add(-time.Minute), true)
	seedTable(t, repo, 1, "t1", now.Add(time.Hour), false)
	live := seedTable(t, repo, 1, "t1", now.Add(time.Hour), true)
	seedTable(t, repo, 2, "t2", now.Add(time.Hour), true)

	found, err := repo.FindLiveByLogin(ctx, "t1", now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, live.ID, found[0].ID)
}

func TestTableRepository_FindActiveClashes(t *testing.T) {
	ctx := context.Background()
	repo := NewTableRepository(newSQLiteDB(t))
	now := time.Now().UTC()

	byNumber := seedTable(t, repo, 5, "five", now.Add(time.Hour), true)
	byLogin := seedTable(t, repo, 6, "shared", now.Add(-time.Hour), true)
	seedTable(t, repo, 5, "gone", now.Add(time.Hour), false)

	clashes, err := repo.FindActiveClashes(ctx, 5, "shared", 0)
	require.NoError(t, err)
	ids := []uint{}
	for _, c := range clashes {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uint{byNumber.ID, byLogin.ID}, ids)

	clashes, err = repo.FindActiveClashes(ctx, 5, "five", byNumber.ID)
	require.NoError(t, err)
	assert.Empty(t, clashes)
}

func TestTableRepository_DeactivateKeepsRow(t *testing.T) {
	ctx := context.Background()
	repo := NewTableRepository(newSQLiteDB(t))
	table := seedTable(t, repo, 3, "t3", time.Now().UTC().Add(time.Hour), true)

	require.NoError(t, repo.Deactivate(ctx, table.ID))
	require.NoError(t, repo.Deactivate(ctx))

	found, err := repo.FindByID(ctx, table.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTableRepository_Deactivate_SQL(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewTableRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "table_sessions" SET "is_active"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Deactivate(context.Background(), 3, 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_UpdateStatus_SQL(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewQueueRepository(gormDB)
	playedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "queue_items" SET "played_at"=$1,"status"=$2 WHERE id = $3`)).
		WithArgs(sqlmock.AnyArg(), "playing", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), 5, model.QueueStatusPlaying, &playedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_ListFIFOAndFilters(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLiteDB(t)
	tables := NewTableRepository(gdb)
	songs := NewSongRepository(gdb)
	queue := NewQueueRepository(gdb)

	now := time.Now().UTC().Truncate(time.Microsecond)
	t1 := seedTable(t, tables, 1, "t1", now.Add(time.Hour), true)
	t2 := seedTable(t, tables, 2, "t2", now.Add(time.Hour), true)
	song := &model.Song{Title: "Song", Artist: "Artist", Genre: "pop", FileFormat: "kar"}
	require.NoError(t, songs.Create(ctx, song))

	// inserted out of order on purpose
	late := &model.QueueItem{SongID: song.ID, TableID: t1.ID, Status: model.QueueStatusPending, AddedAt: now.Add(2 * time.Second)}
	early := &model.QueueItem{SongID: song.ID, TableID: t2.ID, Status: model.QueueStatusPending, AddedAt: now}
	playing := &model.QueueItem{SongID: song.ID, TableID: t1.ID, Status: model.QueueStatusPlaying, AddedAt: now.Add(time.Second)}
	for _, item := range []*model.QueueItem{late, early, playing} {
		require.NoError(t, queue.Create(ctx, item))
	}

	pending := model.QueueStatusPending
	items, err := queue.List(ctx, QueueFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, early.ID, items[0].ID)
	assert.Equal(t, late.ID, items[1].ID)
	assert.Equal(t, "Song", items[0].Song.Title)
	assert.Equal(t, 2, items[0].Table.TableNumber)

	items, err = queue.List(ctx, QueueFilter{TableID: &t1.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, playing.ID, items[0].ID)

	found, err := queue.FindPlaying(ctx, &t2.ID)
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = queue.FindPlaying(ctx, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, playing.ID, found[0].ID)
}

func TestQueueRepository_UpdateStatusKeepsPlayedAt(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLiteDB(t)
	queue := NewQueueRepository(gdb)

	now := time.Now().UTC().Truncate(time.Second)
	item := &model.QueueItem{SongID: 1, TableID: 1, Status: model.QueueStatusPending, AddedAt: now}
	require.NoError(t, queue.Create(ctx, item))

	require.NoError(t, queue.UpdateStatus(ctx, item.ID, model.QueueStatusPlaying, &now))
	require.NoError(t, queue.UpdateStatus(ctx, item.ID, model.QueueStatusDone, nil))

	found, err := queue.FindByIDForUpdate(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusDone, found.Status)
	require.NotNil(t, found.PlayedAt)
	assert.WithinDuration(t, now, *found.PlayedAt, time.Second)
}

func TestQueueEventRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueEventRepository(newSQLiteDB(t))

	require.NoError(t, repo.CreateBatch(ctx, nil))
	require.NoError(t, repo.CreateBatch(ctx, []model.QueueEvent{
		{QueueItemID: 1, TableID: 2, SongID: 3, ToStatus: model.QueueStatusPending, Actor: model.RoleTable},
		{QueueItemID: 1, TableID: 2, SongID: 3, FromStatus: model.QueueStatusPending, ToStatus: model.QueueStatusPlaying, Actor: model.RoleAdmin},
		{QueueItemID: 9, TableID: 2, SongID: 3, ToStatus: model.QueueStatusPending},
	}))

	events, err := repo.ListByItem(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.QueueStatusPending, events[0].ToStatus)
	assert.Equal(t, model.QueueStatusPlaying, events[1].ToStatus)
	assert.Equal(t, model.RoleAdmin, events[1].Actor)
}

func TestSongRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRepository(newSQLiteDB(t))

	require.NoError(t, repo.CreateBatch(ctx, []model.Song{
		{Title: "Bohemian Rhapsody", Artist: "Queen", Genre: "rock", FileFormat: "kar"},
		{Title: "Dancing Queen", Artist: "ABBA", Genre: "pop", FileFormat: "kar"},
		{Title: "Waterloo", Artist: "ABBA", Genre: "pop", FileFormat: "mp3"},
	}))

	tests := []struct {
		name   string
		filter SongFilter
		want   []string
	}{
		{"all ordered by artist then title", SongFilter{}, []string{"Dancing Queen", "Waterloo", "Bohemian Rhapsody"}},
		{"search matches title or artist", SongFilter{Search: "queen"}, []string{"Dancing Queen", "Bohemian Rhapsody"}},
		{"genre is exact", SongFilter{Genre: "pop"}, []string{"Dancing Queen", "Waterloo"}},
		{"search and genre combine", SongFilter{Search: "QUEEN", Genre: "rock"}, []string{"Bohemian Rhapsody"}},
		{"no match", SongFilter{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			titles := []string{}
			for _, s := range songs {
				titles = append(titles, s.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestAdminRepository_FindAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepository(newSQLiteDB(t))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Create(ctx, &model.AdminAccount{Login: "admin", PasswordHash: "h"}))

	admin, err := repo.FindByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "h", admin.PasswordHash)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
