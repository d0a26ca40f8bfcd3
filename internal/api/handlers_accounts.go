package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListAccounts(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	accounts, err := handler.ledger.ListAccounts(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	responses := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, newAccountResponse(account))
	}
	return c.JSON(responses)
}

func (handler *Handler) CreateAccount(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, ok, err := bindAndValidate[createAccountInput](c)
	if !ok {
		return err
	}

	account, err := handler.ledger.AddAccount(c.UserContext(), user.ID, input.Type, input.Name, input.InitialBalance)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newAccountResponse(account))
}

func (handler *Handler) RenameAccount(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, ok, err := bindAndValidate[renameAccountInput](c)
	if !ok {
		return err
	}

	if err := handler.ledger.RenameAccount(c.UserContext(), user.ID, c.Params("type"), input.Name); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Transfer(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, ok, err := bindAndValidate[transferInput](c)
	if !ok {
		return err
	}

	legs, err := handler.ledger.TransferFunds(c.UserContext(), user.ID, input.From, input.To, input.Amount)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newTransactionResponses(legs))
}

func (handler *Handler) MonthlyStats(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	year := c.QueryInt("year", handler.now().In(handler.ledger.Location()).Year())

	totals, err := handler.ledger.MonthlySummary(c.UserContext(), user.ID, year)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"year":   year,
		"months": newMonthlySummaryResponses(totals),
	})
}

func (handler *Handler) ListTags(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	names, err := handler.ledger.ListTags(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(names)
}
