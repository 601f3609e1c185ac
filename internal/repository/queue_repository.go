package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"karaoke/internal/model"
)

// QueueFilter narrows a queue listing. A nil field matches everything.
type QueueFilter struct {
	Status  *model.QueueStatus
	TableID *uint
}

// QueueRepository defines queue item persistence operations.
type QueueRepository interface {
	Create(ctx context.Context, item *model.QueueItem) error
	FindByID(ctx context.Context, id uint) (*model.QueueItem, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.QueueItem, error)
	FindPlaying(ctx context.Context, tableID *uint) ([]model.QueueItem, error)
	List(ctx context.Context, filter QueueFilter) ([]model.QueueItem, error)
	UpdateStatus(ctx context.Context, id uint, status model.QueueStatus, playedAt *time.Time) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo QueueRepository) error) error
}

type queueRepository struct {
	db *gorm.DB
}

// NewQueueRepository creates a new queue repository.
func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

// Create inserts a queue item without touching its song or table.
func (r *queueRepository) Create(ctx context.Context, item *model.QueueItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// FindByID finds a queue item by ID with its song and table loaded.
func (r *queueRepository) FindByID(ctx context.Context, id uint) (*model.QueueItem, error) {
	var item model.QueueItem
	if err := r.db.WithContext(ctx).Preload("Song").Preload("Table").
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate finds a queue item by ID with a row-level lock.
func (r *queueRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.QueueItem, error) {
	var item model.QueueItem
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPlaying returns playing items, venue-wide or for one table, locked for update.
func (r *queueRepository) FindPlaying(ctx context.Context, tableID *uint) ([]model.QueueItem, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", model.QueueStatusPlaying)
	if tableID != nil {
		q = q.Where("table_id = ?", *tableID)
	}
	var items []model.QueueItem
	if err := q.Order("added_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List returns items in FIFO order with song and table preloaded.
func (r *queueRepository) List(ctx context.Context, filter QueueFilter) ([]model.QueueItem, error) {
	q := r.db.WithContext(ctx).Preload("Song").Preload("Table")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.TableID != nil {
		q = q.Where("table_id = ?", *filter.TableID)
	}

	var items []model.QueueItem
	if err := q.Order("added_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets the status of one item. A nil playedAt leaves played_at untouched.
func (r *queueRepository) UpdateStatus(ctx context.Context, id uint, status model.QueueStatus, playedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if playedAt != nil {
		updates["played_at"] = *playedAt
	}
	return r.db.WithContext(ctx).Model(&model.QueueItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// WithTransaction executes a function within a database transaction.
func (r *queueRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo QueueRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &queueRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// QueueEventRepository defines audit log persistence operations.
type QueueEventRepository interface {
	Create(ctx context.Context, event *model.QueueEvent) error
	CreateBatch(ctx context.Context, events []model.QueueEvent) error
	ListByItem(ctx context.Context, itemID uint) ([]model.QueueEvent, error)
}

type queueEventRepository struct {
	db *gorm.DB
}

// NewQueueEventRepository creates a new queue event repository.
func NewQueueEventRepository(db *gorm.DB) QueueEventRepository {
	return &queueEventRepository{db: db}
}

// Create creates a new queue event entry.
func (r *queueEventRepository) Create(ctx context.Context, event *model.QueueEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CreateBatch creates multiple queue event entries in a single transaction.
func (r *queueEventRepository) CreateBatch(ctx context.Context, events []model.QueueEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&events, 100).Error
}

// ListByItem returns the events of one queue item, oldest first.
func (r *queueEventRepository) ListByItem(ctx context.Context, itemID uint) ([]model.QueueEvent, error) {
	var events []model.QueueEvent
	if err := r.db.WithContext(ctx).Where("queue_item_id = ?", itemID).
		Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
