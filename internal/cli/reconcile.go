package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/ledgerly/internal/services"
	"gorm.io/gorm"
)

// ErrUnbalanced is returned when reconcile finds at least one account whose
// balance drifted from its history.
var ErrUnbalanced = errors.New("balances do not match transaction history")

func RunReconcileCommand(ctx context.Context, deps Dependencies, args []string) error {
	flags := newFlagSet(deps, "reconcile")
	email := flags.String("email", "", "email address of the user")
	if err := flags.Parse(args); err != nil {
		return err
	}

	normalizedEmail, err := requireEmailFlag(*email)
	if err != nil {
		return err
	}
	user, err := deps.Users.FindByEmail(ctx, normalizedEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	discrepancies, err := deps.Ledger.Reconcile(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(discrepancies) == 0 {
		successText.Fprintf(deps.Stdout, "All accounts of %s are balanced\n", user.Email)
		return nil
	}

	for _, discrepancy := range discrepancies {
		failureText.Fprintf(deps.Stdout, "%-10s", discrepancy.AccountType)
		fmt.Fprintf(deps.Stdout, " stored %s, expected %s\n",
			services.FormatCents(discrepancy.StoredCents),
			services.FormatCents(discrepancy.ExpectedCents),
		)
	}
	return ErrUnbalanced
}

func RunPurgeExpiredCommand(ctx context.Context, deps Dependencies, args []string) error {
	flags := newFlagSet(deps, "purge-expired")
	if err := flags.Parse(args); err != nil {
		return err
	}

	removed, err := deps.Auth.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	successText.Fprintf(deps.Stdout, "Removed %d expired rows\n", removed)
	return nil
}
