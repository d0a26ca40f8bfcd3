package db

import (
	"context"
	"time"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

type VerificationTokenRepository struct {
	database *gorm.DB
}

func NewVerificationTokenRepository(database *gorm.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{database: database}
}

func (repo *VerificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	return conn(ctx, repo.database).Create(token).Error
}

// Consume deletes the matching unexpired token and reports whether one existed.
// A token can be consumed at most once.
func (repo *VerificationTokenRepository) Consume(ctx context.Context, id string, email string, purpose string, now time.Time) (bool, error) {
	result := conn(ctx, repo.database).
		Where("id = ? AND email = ? AND purpose = ? AND expires_at > ?", id, email, purpose, now).
		Delete(&models.VerificationToken{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (repo *VerificationTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, repo.database).Where("expires_at <= ?", now).Delete(&models.VerificationToken{})
	return result.RowsAffected, result.Error
}
