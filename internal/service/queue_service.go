package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"karaoke/internal/errors"
	"karaoke/internal/events"
	"karaoke/internal/metrics"
	"karaoke/internal/model"
	"karaoke/internal/repository"
)

// PlayingPolicy decides how many items may be playing at once.
type PlayingPolicy string

const (
	// PlayingPolicyNone places no limit on playing items.
	PlayingPolicyNone PlayingPolicy = "none"
	// PlayingPolicyTable allows one playing item per table.
	PlayingPolicyTable PlayingPolicy = "table"
	// PlayingPolicyVenue allows one playing item in the whole venue.
	PlayingPolicyVenue PlayingPolicy = "venue"
)

// ParsePlayingPolicy parses a configured policy name. Empty means none.
func ParsePlayingPolicy(s string) (PlayingPolicy, error) {
	switch p := PlayingPolicy(s); p {
	case "":
		return PlayingPolicyNone, nil
	case PlayingPolicyNone, PlayingPolicyTable, PlayingPolicyVenue:
		return p, nil
	}
	return "", fmt.Errorf("unknown queue playing policy %q", s)
}

type actorKey struct{}

// WithActor tags ctx with the role performing queue changes, for auditing.
func WithActor(ctx context.Context, role model.Role) context.Context {
	return context.WithValue(ctx, actorKey{}, role)
}

func actorFrom(ctx context.Context, fallback model.Role) model.Role {
	if role, ok := ctx.Value(actorKey{}).(model.Role); ok && role != "" {
		return role
	}
	return fallback
}

// QueueService coordinates the venue-wide song request queue.
type QueueService interface {
	Enqueue(ctx context.Context, songID, tableID uint) (*model.QueueItem, error)
	List(ctx context.Context, filter repository.QueueFilter) ([]model.QueueEntry, error)
	Get(ctx context.Context, id uint) (*model.QueueEntry, error)
	Promote(ctx context.Context, id uint) (*model.QueueItem, error)
	Complete(ctx context.Context, id uint) (*model.QueueItem, error)
	Cancel(ctx context.Context, id uint) (*model.QueueItem, error)
	SetStatus(ctx context.Context, id uint, status model.QueueStatus) (*model.QueueItem, error)
	History(ctx context.Context, id uint) ([]model.QueueEvent, error)
}

type queueService struct {
	queueRepo repository.QueueRepository
	songRepo  repository.SongRepository
	tableRepo repository.TableRepository
	eventRepo repository.QueueEventRepository
	recorder  events.Recorder
	policy    PlayingPolicy
	now       Clock
	clock     *monotonicClock
	// Mutex map for per-item locking
	itemMutexes sync.Map
	// Serializes promotions when a playing policy is in force
	playMu sync.Mutex
}

// NewQueueService creates a new queue service. A nil recorder disables auditing.
func NewQueueService(
	queueRepo repository.QueueRepository,
	songRepo repository.SongRepository,
	tableRepo repository.TableRepository,
	eventRepo repository.QueueEventRepository,
	recorder events.Recorder,
	policy PlayingPolicy,
	now Clock,
) QueueService {
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	if policy == "" {
		policy = PlayingPolicyNone
	}
	if now == nil {
		now = SystemClock
	}
	return &queueService{
		queueRepo: queueRepo,
		songRepo:  songRepo,
		tableRepo: tableRepo,
		eventRepo: eventRepo,
		recorder:  recorder,
		policy:    policy,
		now:       now,
		clock:     newMonotonicClock(now),
	}
}

// getMutex returns a mutex for a specific queue item ID.
func (s *queueService) getMutex(id uint) *sync.Mutex {
	key := strconv.FormatUint(uint64(id), 10)
	value, _ := s.itemMutexes.LoadOrStore(key, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// Enqueue adds a pending request for songID on behalf of tableID. Repeated
// requests for the same song are all kept.
func (s *queueService) Enqueue(ctx context.Context, songID, tableID uint) (*model.QueueItem, error) {
	if songID == 0 || tableID == 0 {
		return nil, fmt.Errorf("%w: song_id and table_id required", errors.ErrValidation)
	}

	song, err := s.songRepo.FindByID(ctx, songID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: song %d", errors.ErrNotFound, songID)
		}
		return nil, fmt.Errorf("find song: %w", err)
	}

	table, err := s.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: table session %d", errors.ErrNotFound, tableID)
		}
		return nil, fmt.Errorf("find table session: %w", err)
	}
	if !table.Live(s.now()) {
		return nil, errors.ErrInvalidCredentials
	}

	item := &model.QueueItem{
		SongID:  song.ID,
		TableID: table.ID,
		Status:  model.QueueStatusPending,
		AddedAt: s.clock.Next(),
	}
	if err := s.queueRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create queue item: %w", err)
	}
	item.Song = *song

	s.record(ctx, model.RoleTable, *item, "", model.QueueStatusPending)
	return item, nil
}

// List returns queue entries in request order, oldest first.
func (s *queueService) List(ctx context.Context, filter repository.QueueFilter) ([]model.QueueEntry, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errors.ErrValidation, *filter.Status)
	}

	items, err := s.queueRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}

	entries := make([]model.QueueEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, model.QueueEntry{QueueItem: item, TableNumber: item.Table.TableNumber})
	}
	return entries, nil
}

// Get returns one queue entry.
func (s *queueService) Get(ctx context.Context, id uint) (*model.QueueEntry, error) {
	item, err := s.queueRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: queue item %d", errors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("find queue item: %w", err)
	}
	return &model.QueueEntry{QueueItem: *item, TableNumber: item.Table.TableNumber}, nil
}

// History returns the recorded transitions of one item, oldest first.
// Events are written in batches, so the latest change may lag by a second.
func (s *queueService) History(ctx context.Context, id uint) ([]model.QueueEvent, error) {
	if _, err := s.queueRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: queue item %d", errors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("find queue item: %w", err)
	}

	history, err := s.eventRepo.ListByItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list queue events: %w", err)
	}
	return history, nil
}

// Promote marks a pending item as playing and stamps played_at.
func (s *queueService) Promote(ctx context.Context, id uint) (*model.QueueItem, error) {
	return s.SetStatus(ctx, id, model.QueueStatusPlaying)
}

// Complete marks a playing item as done.
func (s *queueService) Complete(ctx context.Context, id uint) (*model.QueueItem, error) {
	return s.SetStatus(ctx, id, model.QueueStatusDone)
}

// Cancel withdraws a pending or playing item.
func (s *queueService) Cancel(ctx context.Context, id uint) (*model.QueueItem, error) {
	return s.SetStatus(ctx, id, model.QueueStatusCancelled)
}

// SetStatus moves an item forward. Setting the status it already has is a
// no-op; moving backwards or out of a terminal status is rejected.
func (s *queueService) SetStatus(ctx context.Context, id uint, status model.QueueStatus) (*model.QueueItem, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errors.ErrValidation, status)
	}

	exclusive := status == model.QueueStatusPlaying && s.policy != PlayingPolicyNone
	if exclusive {
		s.playMu.Lock()
		defer s.playMu.Unlock()
	}

	mutex := s.getMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	type change struct {
		item model.QueueItem
		from model.QueueStatus
		to   model.QueueStatus
	}
	var changes []change

	err := s.queueRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.QueueRepository) error {
		item, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: queue item %d", errors.ErrNotFound, id)
			}
			return fmt.Errorf("find queue item: %w", err)
		}
		if item.Status == status {
			return nil
		}
		if !item.Status.CanMoveTo(status) {
			return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, item.Status, status)
		}

		if exclusive {
			var scope *uint
			if s.policy == PlayingPolicyTable {
				scope = &item.TableID
			}
			playing, err := repo.FindPlaying(ctx, scope)
			if err != nil {
				return fmt.Errorf("find playing items: %w", err)
			}
			for _, other := range playing {
				if err := repo.UpdateStatus(ctx, other.ID, model.QueueStatusDone, nil); err != nil {
					return fmt.Errorf("retire playing item %d: %w", other.ID, err)
				}
				changes = append(changes, change{other, model.QueueStatusPlaying, model.QueueStatusDone})
			}
		}

		var playedAt *time.Time
		if status == model.QueueStatusPlaying {
			t := s.now()
			playedAt = &t
		}
		if err := repo.UpdateStatus(ctx, item.ID, status, playedAt); err != nil {
			return fmt.Errorf("update queue item: %w", err)
		}
		changes = append(changes, change{*item, item.Status, status})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		s.record(ctx, model.RoleAdmin, c.item, c.from, c.to)
	}

	item, err := s.queueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload queue item: %w", err)
	}
	return item, nil
}

func (s *queueService) record(ctx context.Context, fallback model.Role, item model.QueueItem, from, to model.QueueStatus) {
	metrics.QueueTransitions.WithLabelValues(string(to)).Inc()
	s.recorder.Record(model.QueueEvent{
		QueueItemID: item.ID,
		TableID:     item.TableID,
		SongID:      item.SongID,
		FromStatus:  from,
		ToStatus:    to,
		Actor:       actorFrom(ctx, fallback),
		CreatedAt:   s.now(),
	})
}
