package models

import "time"

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

type Transaction struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index:idx_transactions_user_date"`
	AccountID     uint      `gorm:"not null;index"`
	Type          string    `gorm:"not null"`
	AmountCents   int64     `gorm:"not null"`
	Category      string    `gorm:"not null"`
	Date          time.Time `gorm:"not null;index:idx_transactions_user_date"`
	Description   string    `gorm:"not null;default:''"`
	Recurrence    string    `gorm:"not null;default:none"`
	TransferGroup string    `gorm:"not null;default:'';index"`
	Tags          []Tag     `gorm:"many2many:transaction_tags;"`
	Account       *Account  `gorm:"foreignKey:AccountID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Tag struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;uniqueIndex:uidx_tags_user_name"`
	Name   string `gorm:"not null;uniqueIndex:uidx_tags_user_name"`
}

func IsKnownTransactionType(transactionType string) bool {
	return transactionType == TransactionIncome || transactionType == TransactionExpense
}

func IsKnownRecurrence(recurrence string) bool {
	switch recurrence {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

// SignedAmountCents is the balance delta this transaction contributes.
func (transaction *Transaction) SignedAmountCents() int64 {
	return SignedDelta(transaction.Type, transaction.AmountCents)
}

func SignedDelta(transactionType string, amountCents int64) int64 {
	if transactionType == TransactionExpense {
		return -amountCents
	}
	return amountCents
}

func (transaction *Transaction) TagNames() []string {
	names := make([]string, 0, len(transaction.Tags))
	for _, tag := range transaction.Tags {
		names = append(names, tag.Name)
	}
	return names
}
