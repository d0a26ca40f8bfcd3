package db

import (
	"context"
	"time"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	database *gorm.DB
}

func NewTransactionRepository(database *gorm.DB) *TransactionRepository {
	return &TransactionRepository{database: database}
}

func (repo *TransactionRepository) FindByID(ctx context.Context, userID uint, transactionID uint) (models.Transaction, error) {
	var transaction models.Transaction
	if err := conn(ctx, repo.database).
		Preload("Tags", func(database *gorm.DB) *gorm.DB { return database.Order("tags.name ASC") }).
		Preload("Account").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		return models.Transaction{}, err
	}
	return transaction, nil
}

// List returns the user's transactions newest first.
func (repo *TransactionRepository) List(ctx context.Context, userID uint, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := conn(ctx, repo.database).
		Preload("Tags", func(database *gorm.DB) *gorm.DB { return database.Order("tags.name ASC") }).
		Preload("Account").
		Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("date < ?", filter.To.UTC())
	}

	transactions := make([]models.Transaction, 0)
	if err := query.Order("date DESC, id DESC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (repo *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	return conn(ctx, repo.database).Omit("Tags.*", "Account").Create(transaction).Error
}

func (repo *TransactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	result := conn(ctx, repo.database).Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transaction.ID, transaction.UserID).
		Updates(map[string]any{
			"account_id":     transaction.AccountID,
			"type":           transaction.Type,
			"amount_cents":   transaction.AmountCents,
			"category":       transaction.Category,
			"date":           transaction.Date,
			"description":    transaction.Description,
			"recurrence":     transaction.Recurrence,
			"transfer_group": transaction.TransferGroup,
			"updated_at":     transaction.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *TransactionRepository) ReplaceTags(ctx context.Context, transaction *models.Transaction, tags []models.Tag) error {
	return conn(ctx, repo.database).Model(transaction).Association("Tags").Replace(tags)
}

func (repo *TransactionRepository) Delete(ctx context.Context, userID uint, transactionID uint) error {
	database := conn(ctx, repo.database)
	if err := database.Exec(
		`DELETE FROM transaction_tags WHERE transaction_id IN (SELECT id FROM transactions WHERE id = ? AND user_id = ?)`,
		transactionID,
		userID,
	).Error; err != nil {
		return err
	}
	result := database.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MonthlyTotals groups the user's postings in [from, to) by calendar month in
// from's location. Grouping happens in Go so the query stays dialect neutral.
func (repo *TransactionRepository) MonthlyTotals(ctx context.Context, userID uint, from time.Time, to time.Time) ([]models.MonthlyTotal, error) {
	type posting struct {
		Type        string    `gorm:"column:type"`
		AmountCents int64     `gorm:"column:amount_cents"`
		Date        time.Time `gorm:"column:date"`
	}

	postings := make([]posting, 0)
	if err := conn(ctx, repo.database).Model(&models.Transaction{}).
		Select("type, amount_cents, date").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from.UTC(), to.UTC()).
		Scan(&postings).Error; err != nil {
		return nil, err
	}

	byMonth := make(map[time.Month]*models.MonthlyTotal)
	for _, row := range postings {
		month := row.Date.In(from.Location()).Month()
		total, ok := byMonth[month]
		if !ok {
			total = &models.MonthlyTotal{Month: month}
			byMonth[month] = total
		}
		if row.Type == models.TransactionIncome {
			total.IncomeCents += row.AmountCents
		} else {
			total.ExpenseCents += row.AmountCents
		}
	}

	totals := make([]models.MonthlyTotal, 0, len(byMonth))
	for month := time.January; month <= time.December; month++ {
		if total, ok := byMonth[month]; ok {
			totals = append(totals, *total)
		}
	}
	return totals, nil
}
