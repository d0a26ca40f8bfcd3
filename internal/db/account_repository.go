package db

import (
	"context"

	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	database *gorm.DB
}

func NewAccountRepository(database *gorm.DB) *AccountRepository {
	return &AccountRepository{database: database}
}

func (repo *AccountRepository) ListByUser(ctx context.Context, userID uint) ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	if err := conn(ctx, repo.database).
		Where("user_id = ?", userID).
		Order("type ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (repo *AccountRepository) FindByType(ctx context.Context, userID uint, accountType string) (models.Account, error) {
	var account models.Account
	if err := conn(ctx, repo.database).
		Where("user_id = ? AND type = ?", userID, accountType).
		First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// LockByType reads the account row for update. SQLite ignores the row lock;
// its write transactions are already serialized.
func (repo *AccountRepository) LockByType(ctx context.Context, userID uint, accountType string) (models.Account, error) {
	database := conn(ctx, repo.database)
	if database.Dialector.Name() == DialectPostgres {
		database = database.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := database.
		Where("user_id = ? AND type = ?", userID, accountType).
		First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (repo *AccountRepository) FindByID(ctx context.Context, userID uint, accountID uint) (models.Account, error) {
	var account models.Account
	if err := conn(ctx, repo.database).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (repo *AccountRepository) ExistsByType(ctx context.Context, userID uint, accountType string) (bool, error) {
	var matched int64
	if err := conn(ctx, repo.database).Model(&models.Account{}).
		Where("user_id = ? AND type = ?", userID, accountType).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return conn(ctx, repo.database).Create(account).Error
}

func (repo *AccountRepository) Rename(ctx context.Context, userID uint, accountType string, name string) (int64, error) {
	result := conn(ctx, repo.database).Model(&models.Account{}).
		Where("user_id = ? AND type = ?", userID, accountType).
		Update("name", name)
	return result.RowsAffected, result.Error
}

// AdjustBalance adds delta to the stored balance in a single relative update.
// A delta that would carry the balance past models.MaxBalanceCents leaves the
// row untouched and returns gorm.ErrCheckConstraintViolated.
func (repo *AccountRepository) AdjustBalance(ctx context.Context, userID uint, accountID uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	if delta > models.MaxBalanceCents || delta < -models.MaxBalanceCents {
		return gorm.ErrCheckConstraintViolated
	}

	result := conn(ctx, repo.database).Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Where("balance_cents + ? BETWEEN ? AND ?", delta, -models.MaxBalanceCents, models.MaxBalanceCents).
		Update("balance_cents", gorm.Expr("balance_cents + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	if _, err := repo.FindByID(ctx, userID, accountID); err != nil {
		return err
	}
	return gorm.ErrCheckConstraintViolated
}

// SignedTotals sums posted transactions per account, income positive.
func (repo *AccountRepository) SignedTotals(ctx context.Context, userID uint) ([]models.AccountLedgerTotal, error) {
	totals := make([]models.AccountLedgerTotal, 0)
	err := conn(ctx, repo.database).Model(&models.Transaction{}).
		Select(
			"account_id, COALESCE(SUM(CASE WHEN type = ? THEN amount_cents ELSE -amount_cents END), 0) AS signed_cents",
			models.TransactionIncome,
		).
		Where("user_id = ?", userID).
		Group("account_id").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
