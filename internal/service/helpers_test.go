package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"karaoke/internal/auth"
	"karaoke/internal/cache"
	"karaoke/internal/db"
	"karaoke/internal/model"
	"karaoke/internal/repository"
)

const testCost = bcrypt.MinCost

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fixture wires every service against one in-memory database.
type fixture struct {
	db       *gorm.DB
	clock    *fakeClock
	recorder *captureRecorder

	tables repository.TableRepository
	songs  repository.SongRepository
	queue  repository.QueueRepository
	events repository.QueueEventRepository

	authSvc  AuthService
	tableSvc TableService
	queueSvc QueueService
}

func newFixture(t *testing.T, policy PlayingPolicy) *fixture {
	t.Helper()
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)

	f := &fixture{
		db:       gdb,
		clock:    newFakeClock(),
		recorder: &captureRecorder{},
		tables:   repository.NewTableRepository(gdb),
		songs:    repository.NewSongRepository(gdb),
		queue:    repository.NewQueueRepository(gdb),
		events:   repository.NewQueueEventRepository(gdb),
	}
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	tokenStore := auth.NewTokenStore(cache.NewMemory(time.Minute))

	f.authSvc = NewAuthService(repository.NewAdminRepository(gdb), f.tables, jwtService, tokenStore, testCost, f.clock.Now)
	f.tableSvc = NewTableService(f.tables, testCost, f.clock.Now)
	f.queueSvc = NewQueueService(f.queue, f.songs, f.tables, f.events, f.recorder, policy, f.clock.Now)
	return f
}

func (f *fixture) createTable(t *testing.T, number int, login string) *model.TableSession {
	t.Helper()
	table, err := f.tableSvc.Create(context.Background(), CreateTableInput{TableNumber: number, Login: login, Password: "pw"})
	require.NoError(t, err)
	return table
}

func (f *fixture) createSong(t *testing.T, id uint, artist, title string) *model.Song {
	t.Helper()
	song := &model.Song{ID: id, Title: title, Artist: artist, Genre: model.DefaultGenre, FileFormat: "kar"}
	require.NoError(t, f.songs.Create(context.Background(), song))
	return song
}

func intPtr(v int) *int                                 { return &v }
func strPtr(v string) *string                           { return &v }
func uintPtr(v uint) *uint                              { return &v }
func statusPtr(v model.QueueStatus) *model.QueueStatus { return &v }

type captureRecorder struct {
	mu     sync.Mutex
	events []model.QueueEvent
}

func (r *captureRecorder) Record(event model.QueueEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *captureRecorder) Close() {}

func (r *captureRecorder) Events() []model.QueueEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.QueueEvent(nil), r.events...)
}

// MockAdminRepository is a mock implementation of AdminRepository.
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *model.AdminAccount) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *model.AdminAccount) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) FindByLogin(ctx context.Context, login string) (*model.AdminAccount, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminAccount), args.Error(1)
}

func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockMediaStore is a mock implementation of MediaStore.
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockMediaStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
