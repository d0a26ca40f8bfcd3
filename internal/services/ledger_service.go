package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

type LedgerAccountRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Account, error)
	FindByType(ctx context.Context, userID uint, accountType string) (models.Account, error)
	LockByType(ctx context.Context, userID uint, accountType string) (models.Account, error)
	ExistsByType(ctx context.Context, userID uint, accountType string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	Rename(ctx context.Context, userID uint, accountType string, name string) (int64, error)
	AdjustBalance(ctx context.Context, userID uint, accountID uint, delta int64) error
	SignedTotals(ctx context.Context, userID uint) ([]models.AccountLedgerTotal, error)
}

type LedgerTransactionRepository interface {
	FindByID(ctx context.Context, userID uint, transactionID uint) (models.Transaction, error)
	List(ctx context.Context, userID uint, filter models.TransactionFilter) ([]models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	Update(ctx context.Context, transaction *models.Transaction) error
	ReplaceTags(ctx context.Context, transaction *models.Transaction, tags []models.Tag) error
	Delete(ctx context.Context, userID uint, transactionID uint) error
	MonthlyTotals(ctx context.Context, userID uint, from time.Time, to time.Time) ([]models.MonthlyTotal, error)
}

type LedgerTagRepository interface {
	Upsert(ctx context.Context, userID uint, names []string) ([]models.Tag, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Tag, error)
}

type LedgerRepositories struct {
	Transactor   Transactor
	Accounts     LedgerAccountRepository
	Transactions LedgerTransactionRepository
	Tags         LedgerTagRepository
}

// LedgerService keeps every account balance equal to its initial balance
// plus the signed sum of its transactions. Each write runs in one storage
// transaction together with its balance adjustments.
type LedgerService struct {
	repos    LedgerRepositories
	location *time.Location
	now      func() time.Time
}

func NewLedgerService(repos LedgerRepositories, location *time.Location) *LedgerService {
	if location == nil {
		location = time.UTC
	}
	return &LedgerService{repos: repos, location: location, now: time.Now}
}

func (service *LedgerService) Location() *time.Location {
	return service.location
}

func (service *LedgerService) AddTransaction(ctx context.Context, userID uint, input TransactionInput) (models.Transaction, error) {
	normalized, err := service.normalizeTransactionInput(input)
	if err != nil {
		return models.Transaction{}, err
	}

	var created models.Transaction
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		account, err := service.accountForPosting(ctx, userID, normalized.accountType)
		if err != nil {
			return err
		}
		tags, err := service.repos.Tags.Upsert(ctx, userID, normalized.tags)
		if err != nil {
			return err
		}

		now := service.now().UTC()
		transaction := models.Transaction{
			UserID:      userID,
			AccountID:   account.ID,
			Type:        normalized.kind,
			AmountCents: normalized.amountCents,
			Category:    normalized.category,
			Date:        normalized.date,
			Description: normalized.description,
			Recurrence:  normalized.recurrence,
			Tags:        tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := service.repos.Transactions.Create(ctx, &transaction); err != nil {
			return err
		}
		if err := service.repos.Accounts.AdjustBalance(ctx, userID, account.ID, transaction.SignedAmountCents()); err != nil {
			return err
		}

		account.BalanceCents += transaction.SignedAmountCents()
		transaction.Account = &account
		created = transaction
		return nil
	})
	if err != nil {
		return models.Transaction{}, ledgerError(err)
	}
	return created, nil
}

func (service *LedgerService) GetTransaction(ctx context.Context, userID uint, transactionID uint) (models.Transaction, error) {
	transaction, err := service.repos.Transactions.FindByID(ctx, userID, transactionID)
	if err != nil {
		return models.Transaction{}, ledgerError(err)
	}
	return transaction, nil
}

// EditTransaction replaces every field of the transaction. The old delta is
// reversed on the old account before the new delta lands on the new one.
// An edited transfer leg leaves its transfer group.
func (service *LedgerService) EditTransaction(ctx context.Context, userID uint, transactionID uint, input TransactionInput) (models.Transaction, error) {
	normalized, err := service.normalizeTransactionInput(input)
	if err != nil {
		return models.Transaction{}, err
	}

	var updated models.Transaction
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		existing, err := service.repos.Transactions.FindByID(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		account, err := service.accountForPosting(ctx, userID, normalized.accountType)
		if err != nil {
			return err
		}

		if err := service.repos.Accounts.AdjustBalance(ctx, userID, existing.AccountID, -existing.SignedAmountCents()); err != nil {
			return err
		}
		newDelta := models.SignedDelta(normalized.kind, normalized.amountCents)
		if err := service.repos.Accounts.AdjustBalance(ctx, userID, account.ID, newDelta); err != nil {
			return err
		}

		existing.AccountID = account.ID
		existing.Type = normalized.kind
		existing.AmountCents = normalized.amountCents
		existing.Category = normalized.category
		existing.Date = normalized.date
		existing.Description = normalized.description
		existing.Recurrence = normalized.recurrence
		existing.TransferGroup = ""
		existing.UpdatedAt = service.now().UTC()
		if err := service.repos.Transactions.Update(ctx, &existing); err != nil {
			return err
		}

		tags, err := service.repos.Tags.Upsert(ctx, userID, normalized.tags)
		if err != nil {
			return err
		}
		existing.Account = nil
		if err := service.repos.Transactions.ReplaceTags(ctx, &existing, tags); err != nil {
			return err
		}

		updated, err = service.repos.Transactions.FindByID(ctx, userID, transactionID)
		return err
	})
	if err != nil {
		return models.Transaction{}, ledgerError(err)
	}
	return updated, nil
}

func (service *LedgerService) DeleteTransaction(ctx context.Context, userID uint, transactionID uint) error {
	err := service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		existing, err := service.repos.Transactions.FindByID(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if err := service.repos.Accounts.AdjustBalance(ctx, userID, existing.AccountID, -existing.SignedAmountCents()); err != nil {
			return err
		}
		return service.repos.Transactions.Delete(ctx, userID, transactionID)
	})
	if err != nil {
		return ledgerError(err)
	}
	return nil
}

// TransferFunds posts an expense on the source and an income on the
// destination. The funds check reads the locked source row, so credit
// accounts need a positive balance too.
func (service *LedgerService) TransferFunds(ctx context.Context, userID uint, fromType string, toType string, amount decimal.Decimal) ([]models.Transaction, error) {
	fromType = NormalizeAccountType(fromType)
	toType = NormalizeAccountType(toType)
	if fromType == toType {
		return nil, invalidf("source and destination accounts must differ")
	}
	if !models.IsKnownAccountType(fromType) || !models.IsKnownAccountType(toType) {
		return nil, invalidf("unknown account type")
	}
	amountCents, err := positiveCents(amount)
	if err != nil {
		return nil, err
	}

	legs := make([]models.Transaction, 0, 2)
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		source, err := service.repos.Accounts.LockByType(ctx, userID, fromType)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidf("account %q does not exist", fromType)
		}
		if err != nil {
			return err
		}
		destination, err := service.accountForPosting(ctx, userID, toType)
		if err != nil {
			return err
		}
		if source.BalanceCents < amountCents {
			return ErrInsufficientFunds
		}

		now := service.now()
		group := uuid.NewString()
		postings := []struct {
			account     models.Account
			kind        string
			description string
		}{
			{account: source, kind: models.TransactionExpense, description: fmt.Sprintf("Transfer to %s", destination.Name)},
			{account: destination, kind: models.TransactionIncome, description: fmt.Sprintf("Transfer from %s", source.Name)},
		}
		for _, posting := range postings {
			transaction := models.Transaction{
				UserID:        userID,
				AccountID:     posting.account.ID,
				Type:          posting.kind,
				AmountCents:   amountCents,
				Category:      TransferCategory,
				Date:          now.UTC(),
				Description:   posting.description,
				Recurrence:    models.RecurrenceNone,
				TransferGroup: group,
				CreatedAt:     now.UTC(),
				UpdatedAt:     now.UTC(),
			}
			if err := service.repos.Transactions.Create(ctx, &transaction); err != nil {
				return err
			}
			if err := service.repos.Accounts.AdjustBalance(ctx, userID, posting.account.ID, transaction.SignedAmountCents()); err != nil {
				return err
			}
			account := posting.account
			account.BalanceCents += transaction.SignedAmountCents()
			transaction.Account = &account
			legs = append(legs, transaction)
		}
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return legs, nil
}

func (service *LedgerService) AddAccount(ctx context.Context, userID uint, accountType string, name string, initialBalance decimal.Decimal) (models.Account, error) {
	accountType = NormalizeAccountType(accountType)
	if !models.IsKnownAccountType(accountType) {
		return models.Account{}, invalidf("account type must be one of %s", strings.Join(models.AccountTypes(), ", "))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Account{}, invalidf("account name is required")
	}
	initialCents, err := CentsFromDecimal(initialBalance)
	if err != nil {
		return models.Account{}, err
	}

	exists, err := service.repos.Accounts.ExistsByType(ctx, userID, accountType)
	if err != nil {
		return models.Account{}, internalError(err)
	}
	if exists {
		return models.Account{}, ErrDuplicateAccountType
	}

	now := service.now().UTC()
	account := models.Account{
		UserID:              userID,
		Type:                accountType,
		Name:                name,
		InitialBalanceCents: initialCents,
		BalanceCents:        initialCents,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := service.repos.Accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Account{}, ErrDuplicateAccountType
		}
		return models.Account{}, internalError(err)
	}
	return account, nil
}

func (service *LedgerService) RenameAccount(ctx context.Context, userID uint, accountType string, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return invalidf("account name is required")
	}

	renamed, err := service.repos.Accounts.Rename(ctx, userID, NormalizeAccountType(accountType), newName)
	if err != nil {
		return internalError(err)
	}
	if renamed == 0 {
		return ErrNotFound
	}
	return nil
}

func (service *LedgerService) ListAccounts(ctx context.Context, userID uint) ([]models.Account, error) {
	accounts, err := service.repos.Accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return accounts, nil
}

// ListTags returns the user's tag names in alphabetical order.
func (service *LedgerService) ListTags(ctx context.Context, userID uint) ([]string, error) {
	tags, err := service.repos.Tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names, nil
}

type TransactionQuery struct {
	Type       string
	MonthLabel string
}

// GetFilteredTransactions never fails on filter input: an unknown type or an
// unparseable month label matches nothing.
func (service *LedgerService) GetFilteredTransactions(ctx context.Context, userID uint, query TransactionQuery) ([]models.Transaction, error) {
	filter := models.TransactionFilter{}

	if kind := strings.ToLower(strings.TrimSpace(query.Type)); kind != "" {
		if !models.IsKnownTransactionType(kind) {
			return []models.Transaction{}, nil
		}
		filter.Type = kind
	}

	if strings.TrimSpace(query.MonthLabel) != "" {
		monthStart, ok := ParseMonthLabel(query.MonthLabel, service.location)
		if !ok {
			return []models.Transaction{}, nil
		}
		filter.From = monthStart
		filter.To = monthStart.AddDate(0, 1, 0)
	}

	transactions, err := service.repos.Transactions.List(ctx, userID, filter)
	if err != nil {
		return nil, internalError(err)
	}
	return transactions, nil
}

// MonthlySummary returns all twelve months of year, empty months included.
func (service *LedgerService) MonthlySummary(ctx context.Context, userID uint, year int) ([]models.MonthlyTotal, error) {
	if year < 1 || year > 9999 {
		return nil, invalidf("year %d is out of range", year)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, service.location)
	totals, err := service.repos.Transactions.MonthlyTotals(ctx, userID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, internalError(err)
	}

	summary := make([]models.MonthlyTotal, 12)
	for index := range summary {
		summary[index].Month = time.Month(index + 1)
	}
	for _, total := range totals {
		summary[total.Month-1] = total
	}
	return summary, nil
}

type BalanceDiscrepancy struct {
	AccountType   string
	StoredCents   int64
	ExpectedCents int64
}

// Reconcile lists accounts whose stored balance differs from the initial
// balance plus the signed sum of their transactions.
func (service *LedgerService) Reconcile(ctx context.Context, userID uint) ([]BalanceDiscrepancy, error) {
	var discrepancies []BalanceDiscrepancy
	err := service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		accounts, err := service.repos.Accounts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		totals, err := service.repos.Accounts.SignedTotals(ctx, userID)
		if err != nil {
			return err
		}

		signedByAccount := make(map[uint]int64, len(totals))
		for _, total := range totals {
			signedByAccount[total.AccountID] = total.SignedCents
		}

		discrepancies = make([]BalanceDiscrepancy, 0)
		for _, account := range accounts {
			expected := account.InitialBalanceCents + signedByAccount[account.ID]
			if expected != account.BalanceCents {
				discrepancies = append(discrepancies, BalanceDiscrepancy{
					AccountType:   account.Type,
					StoredCents:   account.BalanceCents,
					ExpectedCents: expected,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, internalError(err)
	}
	return discrepancies, nil
}

func (service *LedgerService) accountForPosting(ctx context.Context, userID uint, accountType string) (models.Account, error) {
	account, err := service.repos.Accounts.FindByType(ctx, userID, accountType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, invalidf("account %q does not exist", accountType)
	}
	return account, err
}

// ledgerError passes domain errors through and hides storage detail.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return invalidf("account balance would exceed %s", FormatCents(models.MaxBalanceCents))
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrDuplicateAccountType):
		return err
	default:
		return internalError(err)
	}
}
