package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/session", handler.Session)
	auth.Patch("/profile", handler.AuthRequired, handler.UpdateProfile)
	auth.Post("/forgot-password", handler.ForgotPassword)
	auth.Post("/reset-password", handler.ResetPassword)

	transactions := api.Group("/transactions", handler.AuthRequired)
	transactions.Get("", handler.ListTransactions)
	transactions.Post("", handler.CreateTransaction)
	transactions.Get("/:id", handler.GetTransaction)
	transactions.Put("/:id", handler.UpdateTransaction)
	transactions.Delete("/:id", handler.DeleteTransaction)

	api.Post("/transfers", handler.AuthRequired, handler.Transfer)

	accounts := api.Group("/accounts", handler.AuthRequired)
	accounts.Get("", handler.ListAccounts)
	accounts.Post("", handler.CreateAccount)
	accounts.Patch("/:type", handler.RenameAccount)

	api.Get("/tags", handler.AuthRequired, handler.ListTags)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/monthly", handler.MonthlyStats)
}
