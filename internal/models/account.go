package models

import "time"

const (
	AccountChecking = "checking"
	AccountSavings  = "savings"
	AccountCredit   = "credit"
	AccountCash     = "cash"
)

// MaxBalanceCents bounds a stored balance in both directions. Postings that
// would move a balance past it are refused so the relative update can never
// overflow the column.
const MaxBalanceCents int64 = 100_000_000_000_000_000

// Account balances are integer cents. BalanceCents only moves through
// ledger postings; InitialBalanceCents is fixed at creation.
type Account struct {
	ID                  uint      `gorm:"primaryKey"`
	UserID              uint      `gorm:"not null;uniqueIndex:uidx_accounts_user_type"`
	Type                string    `gorm:"not null;uniqueIndex:uidx_accounts_user_type"`
	Name                string    `gorm:"not null"`
	InitialBalanceCents int64     `gorm:"not null;default:0"`
	BalanceCents        int64     `gorm:"not null;default:0"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

func IsKnownAccountType(accountType string) bool {
	switch accountType {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash:
		return true
	default:
		return false
	}
}

// AccountTypes lists account types in display order.
func AccountTypes() []string {
	return []string{AccountChecking, AccountSavings, AccountCredit, AccountCash}
}

type DefaultAccount struct {
	Type string
	Name string
}

func DefaultAccounts() []DefaultAccount {
	return []DefaultAccount{
		{Type: AccountChecking, Name: "Checking"},
		{Type: AccountSavings, Name: "Savings"},
	}
}
