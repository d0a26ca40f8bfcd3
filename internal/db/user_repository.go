package db

import (
	"context"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := conn(ctx, repo.database).First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindByEmail matches the stored email exactly; no case folding is applied.
func (repo *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := conn(ctx, repo.database).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := conn(ctx, repo.database).Model(&models.User{}).
		Where("email = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return conn(ctx, repo.database).Create(user).Error
}

func (repo *UserRepository) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	return conn(ctx, repo.database).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (repo *UserRepository) UpdateDisplayName(ctx context.Context, userID uint, displayName string) (int64, error) {
	result := conn(ctx, repo.database).Model(&models.User{}).
		Where("id = ?", userID).
		Update("display_name", displayName)
	return result.RowsAffected, result.Error
}
