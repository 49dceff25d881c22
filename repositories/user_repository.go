package repositories

import (
	"context"

	"stashbox/models"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(_ context.Context, tx *gorm.DB, user *models.User) error {
	return useTx(r.db, tx).Create(user).Error
}

func (r *GormUserRepository) GetByID(_ context.Context, tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).First(&user, userID).Error
	return user, err
}

func (r *GormUserRepository) GetByEmail(_ context.Context, tx *gorm.DB, email string) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).Where("email = ?", email).First(&user).Error
	return user, err
}

func (r *GormUserRepository) GetByAccountID(_ context.Context, tx *gorm.DB, accountID string) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).Where("account_id = ?", accountID).First(&user).Error
	return user, err
}
