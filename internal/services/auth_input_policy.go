package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/ledgerly/internal/models"
)

// NormalizeAuthEmail trims the address and checks that it parses. Case is
// preserved: stored emails are matched exactly.
func NormalizeAuthEmail(raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		return ""
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ""
	}
	return email
}

func NormalizePlan(raw string) (string, bool) {
	plan := strings.ToLower(strings.TrimSpace(raw))
	if plan == "" {
		return models.PlanFree, true
	}
	return plan, models.IsKnownPlan(plan)
}

type RegistrationInput struct {
	Name     string
	Email    string
	Password string
	Plan     string
}

const maxDisplayNameRunes = 100

func normalizeDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		return "", invalidf("name is required")
	case utf8.RuneCountInString(name) > maxDisplayNameRunes:
		return "", invalidf("name must be at most %d characters", maxDisplayNameRunes)
	}
	return name, nil
}

func normalizeRegistrationInput(input RegistrationInput) (RegistrationInput, error) {
	name, err := normalizeDisplayName(input.Name)
	if err != nil {
		return RegistrationInput{}, err
	}
	if strings.TrimSpace(input.Email) == "" {
		return RegistrationInput{}, invalidf("email is required")
	}
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return RegistrationInput{}, invalidf("email is not a valid address")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return RegistrationInput{}, invalidf("%s", err.Error())
	}
	plan, ok := NormalizePlan(input.Plan)
	if !ok {
		return RegistrationInput{}, invalidf("unknown plan %q", plan)
	}
	return RegistrationInput{Name: name, Email: email, Password: input.Password, Plan: plan}, nil
}
