package models

import "time"

// TransactionFilter narrows a transaction listing. Zero From/To leave that
// side of the date range open; empty Type matches both types.
type TransactionFilter struct {
	Type string
	From time.Time
	To   time.Time
}

type MonthlyTotal struct {
	Month        time.Month
	IncomeCents  int64
	ExpenseCents int64
}

func (total MonthlyTotal) NetCents() int64 {
	return total.IncomeCents - total.ExpenseCents
}

type AccountLedgerTotal struct {
	AccountID   uint  `gorm:"column:account_id"`
	SignedCents int64 `gorm:"column:signed_cents"`
}
