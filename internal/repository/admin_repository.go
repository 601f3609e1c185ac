package repository

import (
	"context"

	"gorm.io/gorm"

	"karaoke/internal/model"
)

// AdminRepository defines persistence operations for operator accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *model.AdminAccount) error
	Update(ctx context.Context, admin *model.AdminAccount) error
	FindByLogin(ctx context.Context, login string) (*model.AdminAccount, error)
	Count(ctx context.Context) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository builds a GORM-backed repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *model.AdminAccount) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) Update(ctx context.Context, admin *model.AdminAccount) error {
	return r.db.WithContext(ctx).Save(admin).Error
}

func (r *adminRepository) FindByLogin(ctx context.Context, login string) (*model.AdminAccount, error) {
	var admin model.AdminAccount
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.AdminAccount{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
