package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/ledgerly/internal/db"
	"github.com/terraincognita07/ledgerly/internal/models"
	"gorm.io/gorm"
)

var testSecretKey = []byte("test-secret-key-with-at-least-32-bytes!")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(step time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(step)
}

type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (notifier *recordingNotifier) NotifyPasswordReset(_ context.Context, email string, token string, _ time.Time) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.tokens == nil {
		notifier.tokens = make(map[string]string)
	}
	notifier.tokens[email] = token
	return nil
}

type serviceTestEnv struct {
	database *gorm.DB
	repos    *db.Repositories
	clock    *testClock
	auth     *AuthService
	ledger   *LedgerService
	notifier *recordingNotifier
}

type serviceTestOption func(*AuthOptions)

func withSessionCache(cache SessionCache) serviceTestOption {
	return func(options *AuthOptions) {
		options.Cache = cache
	}
}

func newServiceTestEnv(t *testing.T, opts ...serviceTestOption) *serviceTestEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ledgerly-services.db"))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repos := db.NewRepositories(database)
	clock := &testClock{now: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}

	authOptions := AuthOptions{
		SecretKey: testSecretKey,
		Notifier:  notifier,
		Now:       clock.Now,
	}
	for _, opt := range opts {
		opt(&authOptions)
	}
	auth := NewAuthService(AuthRepositories{
		Transactor:         repos.Transactor,
		Users:              repos.Users,
		Sessions:           repos.Sessions,
		VerificationTokens: repos.VerificationTokens,
		Accounts:           repos.Accounts,
	}, authOptions)

	ledger := NewLedgerService(LedgerRepositories{
		Transactor:   repos.Transactor,
		Accounts:     repos.Accounts,
		Transactions: repos.Transactions,
		Tags:         repos.Tags,
	}, time.UTC)
	ledger.now = clock.Now

	return &serviceTestEnv{
		database: database,
		repos:    repos,
		clock:    clock,
		auth:     auth,
		ledger:   ledger,
		notifier: notifier,
	}
}

func (env *serviceTestEnv) register(t *testing.T, email string, password string) models.User {
	t.Helper()
	user, err := env.auth.Register(context.Background(), RegistrationInput{
		Name:     "Test User",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// bareUser stores a user without the default accounts so tests can set
// opening balances through AddAccount.
func (env *serviceTestEnv) bareUser(t *testing.T, email string, accounts map[string]string) models.User {
	t.Helper()
	user := models.User{Email: email, DisplayName: "Bare", Plan: models.PlanFree, CreatedAt: env.clock.Now().UTC()}
	require.NoError(t, env.repos.Users.Create(context.Background(), &user))
	for accountType, balance := range accounts {
		_, err := env.ledger.AddAccount(context.Background(), user.ID, accountType, accountType, decimal.RequireFromString(balance))
		require.NoError(t, err)
	}
	return user
}

func (env *serviceTestEnv) balance(t *testing.T, userID uint, accountType string) string {
	t.Helper()
	account, err := env.repos.Accounts.FindByType(context.Background(), userID, accountType)
	require.NoError(t, err)
	return FormatCents(account.BalanceCents)
}

func (env *serviceTestEnv) requireReconciled(t *testing.T, userID uint) {
	t.Helper()
	discrepancies, err := env.ledger.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, discrepancies)
}

func (env *serviceTestEnv) countTransactions(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.database.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
