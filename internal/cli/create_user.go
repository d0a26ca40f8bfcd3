package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/ledgerly/internal/services"
)

func RunCreateUserCommand(ctx context.Context, deps Dependencies, args []string) error {
	flags := newFlagSet(deps, "create-user")
	email := flags.String("email", "", "email address of the new user")
	name := flags.String("name", "", "display name")
	plan := flags.String("plan", "", "plan: free, premium or family")
	password := flags.String("password", "", "password (prompted when omitted)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	normalizedEmail, err := requireEmailFlag(*email)
	if err != nil {
		return err
	}
	if *password == "" {
		*password, err = readPassword(deps.Stdin, deps.Stdout, "Password")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	user, err := deps.Auth.Register(ctx, services.RegistrationInput{
		Name:     *name,
		Email:    normalizedEmail,
		Password: *password,
		Plan:     *plan,
	})
	if errors.Is(err, services.ErrDuplicateEmail) {
		return fmt.Errorf("user %s already exists", normalizedEmail)
	}
	if err != nil {
		return err
	}

	successText.Fprintf(deps.Stdout, "User %s created", user.Email)
	fmt.Fprintf(deps.Stdout, " (id %d, plan %s)\n", user.ID, user.Plan)
	return nil
}
