package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"karaoke/internal/model"
)

// TableRepository defines table session persistence operations.
type TableRepository interface {
	Create(ctx context.Context, table *model.TableSession) error
	Update(ctx context.Context, table *model.TableSession) error
	FindByID(ctx context.Context, id uint) (*model.TableSession, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.TableSession, error)
	FindLiveByLogin(ctx context.Context, login string, now time.Time) ([]model.TableSession, error)
	FindActiveClashes(ctx context.Context, tableNumber int, login string, excludeID uint) ([]model.TableSession, error)
	Deactivate(ctx context.Context, ids ...uint) error
	List(ctx context.Context) ([]model.TableSession, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TableRepository) error) error
}

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table session repository.
func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

// Create inserts a new table session.
func (r *tableRepository) Create(ctx context.Context, table *model.TableSession) error {
	return r.db.WithContext(ctx).Create(table).Error
}

// Update writes every mutable column of an existing session.
func (r *tableRepository) Update(ctx context.Context, table *model.TableSession) error {
	return r.db.WithContext(ctx).Save(table).Error
}

// FindByID finds a table session by ID, active or not.
func (r *tableRepository) FindByID(ctx context.Context, id uint) (*model.TableSession, error) {
	var table model.TableSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// FindByIDForUpdate finds a table session by ID with a row-level lock.
func (r *tableRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.TableSession, error) {
	var table model.TableSession
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// FindLiveByLogin returns active, unexpired sessions using login, newest first.
func (r *tableRepository) FindLiveByLogin(ctx context.Context, login string, now time.Time) ([]model.TableSession, error) {
	var tables []model.TableSession
	if err := r.db.WithContext(ctx).
		Where("login = ? AND is_active = ? AND expires_at > ?", login, true, now).
		Order("id DESC").
		Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// FindActiveClashes returns active sessions, expired or not, that share the
// table number or the login. The row with excludeID is skipped.
func (r *tableRepository) FindActiveClashes(ctx context.Context, tableNumber int, login string, excludeID uint) ([]model.TableSession, error) {
	var tables []model.TableSession
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ?", true).
		Where("(table_number = ? OR login = ?)", tableNumber, login)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// Deactivate clears is_active on the given sessions.
func (r *tableRepository) Deactivate(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.TableSession{}).
		Where("id IN ?", ids).
		Update("is_active", false).Error
}

// List returns every session ordered by table number.
func (r *tableRepository) List(ctx context.Context) ([]model.TableSession, error) {
	var tables []model.TableSession
	if err := r.db.WithContext(ctx).Order("table_number ASC, id ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// WithTransaction executes a function within a database transaction.
func (r *tableRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TableRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &tableRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
