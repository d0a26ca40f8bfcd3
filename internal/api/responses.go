package api

import (
	"github.com/terraincognita07/ledgerly/internal/models"
	"github.com/terraincognita07/ledgerly/internal/services"
)

type transactionResponse struct {
	ID            uint     `json:"id"`
	Account       string   `json:"account"`
	Type          string   `json:"type"`
	Amount        string   `json:"amount"`
	Category      string   `json:"category"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	Recurrence    string   `json:"recurrence"`
	Tags          []string `json:"tags"`
	TransferGroup string   `json:"transfer_group,omitempty"`
}

type accountResponse struct {
	Type           string `json:"type"`
	Name           string `json:"name"`
	Balance        string `json:"balance"`
	InitialBalance string `json:"initial_balance"`
}

type monthlySummaryResponse struct {
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

func (handler *Handler) newTransactionResponse(transaction models.Transaction) transactionResponse {
	accountType := ""
	if transaction.Account != nil {
		accountType = transaction.Account.Type
	}
	return transactionResponse{
		ID:            transaction.ID,
		Account:       accountType,
		Type:          transaction.Type,
		Amount:        services.FormatCents(transaction.AmountCents),
		Category:      transaction.Category,
		Date:          transaction.Date.In(handler.ledger.Location()).Format(dateLayout),
		Description:   transaction.Description,
		Recurrence:    transaction.Recurrence,
		Tags:          transaction.TagNames(),
		TransferGroup: transaction.TransferGroup,
	}
}

func (handler *Handler) newTransactionResponses(transactions []models.Transaction) []transactionResponse {
	responses := make([]transactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		responses = append(responses, handler.newTransactionResponse(transaction))
	}
	return responses
}

func newAccountResponse(account models.Account) accountResponse {
	return accountResponse{
		Type:           account.Type,
		Name:           account.Name,
		Balance:        services.FormatCents(account.BalanceCents),
		InitialBalance: services.FormatCents(account.InitialBalanceCents),
	}
}

func newMonthlySummaryResponses(totals []models.MonthlyTotal) []monthlySummaryResponse {
	responses := make([]monthlySummaryResponse, 0, len(totals))
	for _, total := range totals {
		responses = append(responses, monthlySummaryResponse{
			Month:   int(total.Month),
			Income:  services.FormatCents(total.IncomeCents),
			Expense: services.FormatCents(total.ExpenseCents),
			Net:     services.FormatCents(total.NetCents()),
		})
	}
	return responses
}
