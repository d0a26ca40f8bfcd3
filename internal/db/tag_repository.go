package db

import (
	"context"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	database *gorm.DB
}

func NewTagRepository(database *gorm.DB) *TagRepository {
	return &TagRepository{database: database}
}

// Upsert returns the user's tags with the given names, creating missing ones.
func (repo *TagRepository) Upsert(ctx context.Context, userID uint, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	database := conn(ctx, repo.database)
	candidates := make([]models.Tag, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, models.Tag{UserID: userID, Name: name})
	}
	if err := database.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidates).Error; err != nil {
		return nil, err
	}

	tags := make([]models.Tag, 0, len(names))
	if err := database.
		Where("user_id = ? AND name IN ?", userID, names).
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (repo *TagRepository) ListByUser(ctx context.Context, userID uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := conn(ctx, repo.database).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
