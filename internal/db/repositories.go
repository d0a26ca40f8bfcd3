package db

import "gorm.io/gorm"

type Repositories struct {
	Transactor         *Transactor
	Users              *UserRepository
	Sessions           *SessionRepository
	VerificationTokens *VerificationTokenRepository
	Accounts           *AccountRepository
	Transactions       *TransactionRepository
	Tags               *TagRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Transactor:         NewTransactor(database),
		Users:              NewUserRepository(database),
		Sessions:           NewSessionRepository(database),
		VerificationTokens: NewVerificationTokenRepository(database),
		Accounts:           NewAccountRepository(database),
		Transactions:       NewTransactionRepository(database),
		Tags:               NewTagRepository(database),
	}
}
