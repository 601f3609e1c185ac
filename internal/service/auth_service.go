package service

import (
	"context"
	"fmt"
	"log"
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

// SessionDescriptor is what a successful login or token check yields.
// Table is set for table sessions only; admin sessions carry no lease.
type SessionDescriptor struct {
	Role           model.Role          `json:"role"`
	Token          string              `json:"token,omitempty"`
	TokenExpiresAt time.Time           `json:"token_expires_at"`
	Admin          *model.AdminAccount `json:"user,omitempty"`
	Table          *model.TableSession `json:"table,omitempty"`

	AccountID uint   `json:"-"`
	TokenID   string `json:"-"`
}

// IsAdmin reports whether the session belongs to the operator.
func (d *SessionDescriptor) IsAdmin() bool {
	return d != nil && d.Role == model.RoleAdmin
}

// AuthService handles authentication operations.
type AuthService interface {
	Authenticate(ctx context.Context, role model.Role, login, password string) (*SessionDescriptor, error)
	Validate(ctx context.Context, token string) (*SessionDescriptor, error)
	Logout(ctx context.Context, token string) error
	BootstrapAdmin(ctx context.Context, login, password string) (bool, error)
	UpsertAdmin(ctx context.Context, login, password string) (*model.AdminAccount, error)
}

type authService struct {
	adminRepo  repository.AdminRepository
	tableRepo  repository.TableRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	bcryptCost int
	now        Clock

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	adminRepo repository.AdminRepository,
	tableRepo repository.TableRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	bcryptCost int,
	now Clock,
) AuthService {
	if now == nil {
		now = SystemClock
	}
	return &authService{
		adminRepo:  adminRepo,
		tableRepo:  tableRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		bcryptCost: bcryptCost,
		now:        now,
	}
}

// Authenticate checks a login attempt for role and issues a session token.
// Unknown logins and wrong passwords fail with the same error.
func (s *authService) Authenticate(ctx context.Context, role model.Role, login, password string) (*SessionDescriptor, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", errors.ErrValidation)
	}

	var (
		desc *SessionDescriptor
		err  error
	)
	switch role {
	case model.RoleAdmin:
		desc, err = s.authenticateAdmin(ctx, login, password)
	case model.RoleTable:
		desc, err = s.authenticateTable(ctx, login, password)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", errors.ErrValidation, role)
	}

	switch {
	case err == nil:
		metrics.AuthAttempts.WithLabelValues(string(role), "ok").Inc()
	case errors.Is(err, errors.ErrInvalidCredentials):
		metrics.AuthAttempts.WithLabelValues(string(role), "denied").Inc()
	default:
		metrics.AuthAttempts.WithLabelValues(string(role), "error").Inc()
	}
	return desc, err
}

func (s *authService) authenticateAdmin(ctx context.Context, login, password string) (*SessionDescriptor, error) {
	admin, err := s.adminRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.compareDecoy(password)
			return nil, errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if !auth.VerifyPassword(admin.PasswordHash, password) {
		return nil, errors.ErrInvalidCredentials
	}

	desc := &SessionDescriptor{Role: model.RoleAdmin, Admin: admin, AccountID: admin.ID}
	if err := s.issue(desc, auth.Claims{Role: model.RoleAdmin, AccountID: admin.ID}); err != nil {
		return nil, err
	}
	return desc, nil
}

// compareDecoy spends one bcrypt comparison so that unknown logins take
// as long as a wrong password.
func (s *authService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := auth.HashPassword("karaoke-decoy", s.bcryptCost)
		if err != nil {
			log.Printf("auth: build decoy hash: %v", err)
			return
		}
		s.decoyHash = hash
	})
	auth.VerifyPassword(s.decoyHash, password)
}

func (s *authService) authenticateTable(ctx context.Context, login, password string) (*SessionDescriptor, error) {
	candidates, err := s.tableRepo.FindLiveByLogin(ctx, login, s.now())
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	if len(candidates) == 0 {
		s.compareDecoy(password)
		return nil, errors.ErrInvalidCredentials
	}

	for i := range candidates {
		table := &candidates[i]
		if !auth.VerifyPassword(table.PasswordHash, password) {
			continue
		}
		desc := &SessionDescriptor{Role: model.RoleTable, Table: table, AccountID: table.ID}
		claims := auth.Claims{
			Role:        model.RoleTable,
			AccountID:   table.ID,
			TableID:     table.ID,
			TableNumber: table.TableNumber,
		}
		if err := s.issue(desc, claims); err != nil {
			return nil, err
		}
		return desc, nil
	}
	return nil, errors.ErrInvalidCredentials
}

func (s *authService) issue(desc *SessionDescriptor, claims auth.Claims) error {
	tokenID, token, expiresAt, err := s.jwtService.GenerateSessionToken(claims, s.now())
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	desc.Token = token
	desc.TokenID = tokenID
	desc.TokenExpiresAt = expiresAt
	return nil
}

// Validate resolves a session token. Table sessions are re-read on every
// call, so deactivating or expiring a table ends its session at once.
func (s *authService) Validate(ctx context.Context, token string) (*SessionDescriptor, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, errors.ErrInvalidCredentials
	}

	desc := &SessionDescriptor{
		Role:      claims.Role,
		AccountID: claims.AccountID,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		desc.TokenExpiresAt = claims.ExpiresAt.Time
	}

	switch claims.Role {
	case model.RoleAdmin:
		return desc, nil
	case model.RoleTable:
		table, err := s.tableRepo.FindByID(ctx, claims.TableID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrInvalidCredentials
			}
			return nil, fmt.Errorf("find table: %w", err)
		}
		if !table.Live(s.now()) {
			return nil, errors.ErrInvalidCredentials
		}
		desc.Table = table
		return desc, nil
	default:
		return nil, errors.ErrInvalidCredentials
	}
}

// Logout revokes a session token until it would have expired.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return errors.ErrInvalidCredentials
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// BootstrapAdmin creates the first operator account when none exists yet.
// It reports whether an account was created.
func (s *authService) BootstrapAdmin(ctx context.Context, login, password string) (bool, error) {
	if login == "" || password == "" {
		return false, nil
	}
	n, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.UpsertAdmin(ctx, login, password); err != nil {
		return false, err
	}
	log.Printf("Created bootstrap admin %q", login)
	return true, nil
}

// UpsertAdmin creates the operator account login, or resets its password.
func (s *authService) UpsertAdmin(ctx context.Context, login, password string) (*model.AdminAccount, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, fmt.Errorf("%w: admin login and password are required", errors.ErrValidation)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.adminRepo.FindByLogin(ctx, login)
	switch {
	case err == nil:
		admin.PasswordHash = hash
		if err := s.adminRepo.Update(ctx, admin); err != nil {
			return nil, fmt.Errorf("update admin: %w", err)
		}
		return admin, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = &model.AdminAccount{Login: login, PasswordHash: hash}
		if err := s.adminRepo.Create(ctx, admin); err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		return admin, nil
	default:
		return nil, fmt.Errorf("find admin: %w", err)
	}
}
