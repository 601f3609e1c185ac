package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karaoke/internal/db"
	"karaoke/internal/model"
	"karaoke/internal/repository"
)

// MockQueueEventRepository is a mock implementation of QueueEventRepository
type MockQueueEventRepository struct {
	mock.Mock
}

func (m *MockQueueEventRepository) Create(ctx context.Context, event *model.QueueEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockQueueEventRepository) CreateBatch(ctx context.Context, events []model.QueueEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockQueueEventRepository) ListByItem(ctx context.Context, itemID uint) ([]model.QueueEvent, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]model.QueueEvent), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.QueueEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.QueueEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func TestBatchRecorder_WritesAndPublishesOnClose(t *testing.T) {
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	repo := repository.NewQueueEventRepository(gdb)
	pub := &recordingPublisher{}

	rec := NewBatchRecorder(repo, pub)
	rec.Record(model.QueueEvent{QueueItemID: 1, TableID: 2, SongID: 7, ToStatus: model.QueueStatusPending, Actor: model.RoleTable})
	rec.Record(model.QueueEvent{QueueItemID: 1, TableID: 2, SongID: 7, FromStatus: model.QueueStatusPending, ToStatus: model.QueueStatusPlaying, Actor: model.RoleAdmin})
	rec.Close()

	stored, err := repo.ListByItem(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, model.QueueStatusPending, stored[0].ToStatus)
	assert.Equal(t, model.QueueStatusPlaying, stored[1].ToStatus)
	assert.False(t, stored[0].CreatedAt.IsZero())

	require.Len(t, pub.events, 2)
	assert.Equal(t, "queue.playing", RoutingKey(pub.events[1]))
}

func TestBatchRecorder_FailuresAreSwallowed(t *testing.T) {
	repo := new(MockQueueEventRepository)
	repo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("db down"))
	pub := &recordingPublisher{err: errors.New("broker down")}

	rec := NewBatchRecorder(repo, pub)
	rec.Record(model.QueueEvent{QueueItemID: 3, ToStatus: model.QueueStatusCancelled})
	rec.Close()
	// a second Close is a no-op
	rec.Close()

	repo.AssertNumberOfCalls(t, "CreateBatch", 1)
	assert.Len(t, pub.events, 1)
}

func TestBatchRecorder_NilPublisher(t *testing.T) {
	repo := new(MockQueueEventRepository)
	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(b []model.QueueEvent) bool { return len(b) == 1 })).Return(nil)

	rec := NewBatchRecorder(repo, nil)
	rec.Record(model.QueueEvent{QueueItemID: 4, ToStatus: model.QueueStatusDone})
	rec.Close()

	repo.AssertExpectations(t)
}
