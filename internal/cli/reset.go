package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/ledgerly/internal/security"
	"github.com/terraincognita07/ledgerly/internal/services"
)

func RunResetPasswordCommand(ctx context.Context, deps Dependencies, args []string) error {
	flags := newFlagSet(deps, "reset-password")
	email := flags.String("email", "", "email address of the user")
	generate := flags.Bool("generate", false, "generate and print a temporary password instead of prompting")
	if err := flags.Parse(args); err != nil {
		return err
	}

	normalizedEmail, err := requireEmailFlag(*email)
	if err != nil {
		return err
	}

	var password string
	if *generate {
		password, err = generateTemporaryPassword(12)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
	} else {
		password, err = readPassword(deps.Stdin, deps.Stdout, "New password")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	err = deps.Auth.SetPassword(ctx, normalizedEmail, password)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}
	if err != nil {
		return err
	}

	successText.Fprintln(deps.Stdout, "Password reset successful")
	if *generate {
		fmt.Fprintf(deps.Stdout, "Temporary password: %s\n", password)
	}
	warningText.Fprintln(deps.Stdout, "All sessions of this user were signed out.")
	return nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	return security.RandomString(length, alphabet)
}
