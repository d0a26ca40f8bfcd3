package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/terraincognita07/ledgerly/internal/models"
	"github.com/terraincognita07/ledgerly/internal/services"
)

// ErrUsage reports a command line that names no known command.
var ErrUsage = errors.New("usage error")

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type Dependencies struct {
	Auth   *services.AuthService
	Ledger *services.LedgerService
	Users  UserFinder
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var (
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	failureText = color.New(color.FgRed, color.Bold)
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, deps Dependencies, args []string) error
}

func commands() []command {
	return []command{
		{"create-user", "register a user with the default accounts", RunCreateUserCommand},
		{"reset-password", "set a new password and sign the user out everywhere", RunResetPasswordCommand},
		{"reconcile", "compare stored balances with the transaction history", RunReconcileCommand},
		{"purge-expired", "delete expired sessions and reset tokens", RunPurgeExpiredCommand},
	}
}

// Run dispatches args[0] to the matching admin command.
func Run(ctx context.Context, deps Dependencies, args []string) error {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return ErrUsage
	}

	name := strings.TrimSpace(args[0])
	for _, candidate := range commands() {
		if candidate.name == name {
			return candidate.run(ctx, deps, args[1:])
		}
	}
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(deps.Stdout)
		return nil
	}

	printUsage(deps.Stderr)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ledgerly-admin <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, candidate := range commands() {
		fmt.Fprintf(w, "  %-16s %s\n", candidate.name, candidate.summary)
	}
}

func newFlagSet(deps Dependencies, name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(deps.Stderr)
	return flags
}

func requireEmailFlag(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("-email is required")
	}
	return email, nil
}
