package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ledgerly/internal/services"
)

func (handler *Handler) ListTransactions(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	transactions, err := handler.ledger.GetFilteredTransactions(c.UserContext(), user.ID, services.TransactionQuery{
		Type:       c.Query("type"),
		MonthLabel: c.Query("month"),
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newTransactionResponses(transactions))
}

func (handler *Handler) CreateTransaction(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, ok, err := bindAndValidate[transactionInput](c)
	if !ok {
		return err
	}
	serviceInput, err := handler.transactionServiceInput(input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	transaction, err := handler.ledger.AddTransaction(c.UserContext(), user.ID, serviceInput)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newTransactionResponse(transaction))
}

func (handler *Handler) GetTransaction(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	transactionID, ok := transactionIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	transaction, err := handler.ledger.GetTransaction(c.UserContext(), user.ID, transactionID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newTransactionResponse(transaction))
}

func (handler *Handler) UpdateTransaction(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	transactionID, ok := transactionIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid transaction id")
	}
	input, ok, err := bindAndValidate[transactionInput](c)
	if !ok {
		return err
	}
	serviceInput, err := handler.transactionServiceInput(input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	transaction, err := handler.ledger.EditTransaction(c.UserContext(), user.ID, transactionID, serviceInput)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newTransactionResponse(transaction))
}

func (handler *Handler) DeleteTransaction(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	transactionID, ok := transactionIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	if err := handler.ledger.DeleteTransaction(c.UserContext(), user.ID, transactionID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) transactionServiceInput(input transactionInput) (services.TransactionInput, error) {
	var date time.Time
	if input.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, input.Date, handler.ledger.Location())
		if err != nil {
			return services.TransactionInput{}, &services.ValidationError{Message: "date must use the format 2006-01-02"}
		}
		date = parsed
	}

	return services.TransactionInput{
		AccountType: input.Account,
		Type:        input.Type,
		Amount:      input.Amount,
		Category:    input.Category,
		Date:        date,
		Description: input.Description,
		Tags:        input.Tags,
		Recurrence:  input.Recurrence,
	}, nil
}

func transactionIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
