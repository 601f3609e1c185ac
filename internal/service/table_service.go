package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"karaoke/internal/auth"
	"karaoke/internal/errors"
	"karaoke/internal/metrics"
	"karaoke/internal/model"
	"karaoke/internal/repository"
)

// CreateTableInput carries a new table session. A nil Hours means
// model.DefaultLeaseHours.
type CreateTableInput struct {
	TableNumber int
	Login       string
	Password    string
	Hours       *int
	CreatedBy   uint
}

// TablePatch is a partial edit. Nil fields are left unchanged.
type TablePatch struct {
	TableNumber *int    `json:"table_number,omitempty"`
	Login       *string `json:"login,omitempty"`
	Password    *string `json:"password,omitempty"`
	Hours       *int    `json:"hours,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TablePatch) Empty() bool {
	return p.TableNumber == nil && p.Login == nil && p.Password == nil && p.Hours == nil
}

// TableService manages table session records.
type TableService interface {
	Create(ctx context.Context, in CreateTableInput) (*model.TableSession, error)
	Edit(ctx context.Context, id uint, patch TablePatch) (*model.TableSession, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.TableSession, error)
	List(ctx context.Context) ([]model.TableSession, error)
}

type tableService struct {
	tableRepo  repository.TableRepository
	bcryptCost int
	now        Clock
	// Serializes uniqueness checks within this process; row locks cover
	// the rest on databases that honour them.
	mu sync.Mutex
}

// NewTableService creates a new table session service.
func NewTableService(tableRepo repository.TableRepository, bcryptCost int, now Clock) TableService {
	if now == nil {
		now = SystemClock
	}
	return &tableService{
		tableRepo:  tableRepo,
		bcryptCost: bcryptCost,
		now:        now,
	}
}

func validateTableNumber(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: table_number must be a positive integer", errors.ErrValidation)
	}
	return nil
}

func validateHours(h int) error {
	if !model.ValidLeaseHours(h) {
		return fmt.Errorf("%w: hours must be one of %v", errors.ErrValidation, model.LeaseHours)
	}
	return nil
}

// Create issues a new table session leased for Hours from now.
func (s *tableService) Create(ctx context.Context, in CreateTableInput) (*model.TableSession, error) {
	if err := validateTableNumber(in.TableNumber); err != nil {
		return nil, err
	}
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", errors.ErrValidation)
	}
	hours := model.DefaultLeaseHours
	if in.Hours != nil {
		hours = *in.Hours
	}
	if err := validateHours(hours); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	table := &model.TableSession{
		TableNumber:  in.TableNumber,
		Login:        login,
		PasswordHash: hash,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(hours) * time.Hour),
		IsActive:     true,
		CreatedBy:    in.CreatedBy,
	}

	err = s.tableRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TableRepository) error {
		if err := claimIdentity(ctx, repo, table, now); err != nil {
			return err
		}
		return repo.Create(ctx, table)
	})
	if err != nil {
		return nil, err
	}

	metrics.TableSessions.WithLabelValues("create").Inc()
	return table, nil
}

// claimIdentity makes sure no other live session uses table's number or
// login. Sessions still flagged active but past their lease are retired.
func claimIdentity(ctx context.Context, repo repository.TableRepository, table *model.TableSession, now time.Time) error {
	clashes, err := repo.FindActiveClashes(ctx, table.TableNumber, table.Login, table.ID)
	if err != nil {
		return fmt.Errorf("check uniqueness: %w", err)
	}

	var stale []uint
	for _, other := range clashes {
		if !other.Live(now) {
			stale = append(stale, other.ID)
			continue
		}
		if other.TableNumber == table.TableNumber {
			return fmt.Errorf("%w: table %d already has a live session", errors.ErrConflict, table.TableNumber)
		}
		return fmt.Errorf("%w: login %q is already in use", errors.ErrConflict, table.Login)
	}

	if err := repo.Deactivate(ctx, stale...); err != nil {
		return fmt.Errorf("retire expired sessions: %w", err)
	}
	return nil
}

// Edit applies a partial update. Supplying Hours renews the lease:
// the hours are added to the later of the current expiry and now, and the
// session is reactivated.
func (s *tableService) Edit(ctx context.Context, id uint, patch TablePatch) (*model.TableSession, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", errors.ErrValidation)
	}
	if patch.TableNumber != nil {
		if err := validateTableNumber(*patch.TableNumber); err != nil {
			return nil, err
		}
	}
	var login string
	if patch.Login != nil {
		login = strings.TrimSpace(*patch.Login)
		if login == "" {
			return nil, fmt.Errorf("%w: login must not be empty", errors.ErrValidation)
		}
	}
	if patch.Hours != nil {
		if err := validateHours(*patch.Hours); err != nil {
			return nil, err
		}
	}
	var hash string
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", errors.ErrValidation)
		}
		var err error
		if hash, err = auth.HashPassword(*patch.Password, s.bcryptCost); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var table *model.TableSession
	err := s.tableRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TableRepository) error {
		var err error
		table, err = repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: table session %d", errors.ErrNotFound, id)
			}
			return fmt.Errorf("find table session: %w", err)
		}

		if patch.TableNumber != nil {
			table.TableNumber = *patch.TableNumber
		}
		if patch.Login != nil {
			table.Login = login
		}
		if patch.Password != nil {
			table.PasswordHash = hash
		}
		if patch.Hours != nil {
			base := table.ExpiresAt
			if now.After(base) {
				base = now
			}
			table.ExpiresAt = base.Add(time.Duration(*patch.Hours) * time.Hour)
			table.IsActive = true
		}

		if table.Live(now) {
			if err := claimIdentity(ctx, repo, table, now); err != nil {
				return err
			}
		}
		return repo.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}

	metrics.TableSessions.WithLabelValues("edit").Inc()
	return table, nil
}

// Delete deactivates a session. The record stays so queue items keep a
// valid table reference. Deleting an inactive session succeeds.
func (s *tableService) Delete(ctx context.Context, id uint) error {
	err := s.tableRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TableRepository) error {
		if _, err := repo.FindByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: table session %d", errors.ErrNotFound, id)
			}
			return fmt.Errorf("find table session: %w", err)
		}
		return repo.Deactivate(ctx, id)
	})
	if err != nil {
		return err
	}

	metrics.TableSessions.WithLabelValues("delete").Inc()
	return nil
}

// Get returns a session by id, live or not.
func (s *tableService) Get(ctx context.Context, id uint) (*model.TableSession, error) {
	table, err := s.tableRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: table session %d", errors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("find table session: %w", err)
	}
	return table, nil
}

// List returns every session ordered by table number.
func (s *tableService) List(ctx context.Context) ([]model.TableSession, error) {
	tables, err := s.tableRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list table sessions: %w", err)
	}
	return tables, nil
}
