package db

import (
	"context"
	"time"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	return conn(ctx, repo.database).Create(session).Error
}

func (repo *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (models.Session, bool, error) {
	session := models.Session{}
	result := conn(ctx, repo.database).
		Where("token_hash = ?", tokenHash).
		Limit(1).
		Find(&session)
	if result.Error != nil {
		return models.Session{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Session{}, false, nil
	}
	return session, true, nil
}

func (repo *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return conn(ctx, repo.database).Where("token_hash = ?", tokenHash).Delete(&models.Session{}).Error
}

// DeleteByUser removes every session of the user and returns the removed hashes.
func (repo *SessionRepository) DeleteByUser(ctx context.Context, userID uint) ([]string, error) {
	database := conn(ctx, repo.database)

	hashes := make([]string, 0)
	if err := database.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Pluck("token_hash", &hashes).Error; err != nil {
		return nil, err
	}
	if len(hashes) == 0 {
		return hashes, nil
	}
	if err := database.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return nil, err
	}
	return hashes, nil
}

func (repo *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, repo.database).Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
