package api

import "github.com/shopspring/decimal"

const dateLayout = "2006-01-02"

type registerInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
	Plan     string `json:"plan" validate:"max=32"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordInput struct {
	Email string `json:"email" validate:"required,max=254"`
}

type updateProfileInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type resetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Amounts are decimal strings or numbers; the service enforces sign and
// precision.
type transactionInput struct {
	Account     string          `json:"account" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"max=64"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string          `json:"description" validate:"max=500"`
	Tags        []string        `json:"tags" validate:"max=20,dive,max=32"`
	Recurrence  string          `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly yearly"`
}

type transferInput struct {
	From   string          `json:"from" validate:"required"`
	To     string          `json:"to" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type createAccountInput struct {
	Type           string          `json:"type" validate:"required,oneof=checking savings credit cash"`
	Name           string          `json:"name" validate:"required,max=100"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type renameAccountInput struct {
	Name string `json:"name" validate:"required,max=100"`
}
