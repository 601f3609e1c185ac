package events

import (
	"context"
	"log"
	"sync"
	"time"

	"karaoke/internal/model"
	"karaoke/internal/repository"
)

const (
	batchSize     = 10
	flushInterval = time.Second
	bufferSize    = 100
)

// Recorder accepts queue transitions for auditing and broadcast. Record
// never blocks the caller on the database or the broker.
type Recorder interface {
	Record(event model.QueueEvent)
	Close()
}

// BatchRecorder writes queue events in batches from a background worker
// and hands each persisted event to a Publisher.
type BatchRecorder struct {
	repo      repository.QueueEventRepository
	publisher Publisher
	events    chan model.QueueEvent
	done      chan struct{}
	closeOnce sync.Once
}

var _ Recorder = (*BatchRecorder)(nil)

// NewBatchRecorder starts the worker. A nil publisher disables broadcast.
func NewBatchRecorder(repo repository.QueueEventRepository, publisher Publisher) *BatchRecorder {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	r := &BatchRecorder{
		repo:      repo,
		publisher: publisher,
		events:    make(chan model.QueueEvent, bufferSize),
		done:      make(chan struct{}),
	}

	go r.worker(context.Background())

	return r
}

// Record enqueues event for the worker.
func (r *BatchRecorder) Record(event model.QueueEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	// Send to async channel (non-blocking)
	select {
	case r.events <- event:
	default:
		// Channel full, write synchronously as fallback
		r.flush(context.Background(), []model.QueueEvent{event})
	}
}

// Close stops the worker after writing everything already recorded.
func (r *BatchRecorder) Close() {
	r.closeOnce.Do(func() {
		close(r.events)
		<-r.done
	})
}

func (r *BatchRecorder) worker(ctx context.Context) {
	defer close(r.done)

	batch := make([]model.QueueEvent, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-r.events:
			if !ok {
				// Channel closed, flush remaining events
				r.flush(ctx, batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= batchSize {
				r.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *BatchRecorder) flush(ctx context.Context, batch []model.QueueEvent) {
	if len(batch) == 0 {
		return
	}
	if err := r.repo.CreateBatch(ctx, batch); err != nil {
		log.Printf("events: write %d queue events: %v", len(batch), err)
	}
	for _, event := range batch {
		if err := r.publisher.Publish(ctx, event); err != nil {
			log.Printf("events: publish queue event for item %d: %v", event.QueueItemID, err)
		}
	}
}

// NopRecorder drops every event.
type NopRecorder struct{}

func (NopRecorder) Record(model.QueueEvent) {}
func (NopRecorder) Close()                  {}
