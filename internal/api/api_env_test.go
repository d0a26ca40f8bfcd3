package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/ledgerly/internal/db"
	"github.com/terraincognita07/ledgerly/internal/services"
)

type capturedResetTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (captured *capturedResetTokens) NotifyPasswordReset(_ context.Context, email string, token string, _ time.Time) error {
	captured.mu.Lock()
	defer captured.mu.Unlock()
	captured.tokens[email] = token
	return nil
}

func (captured *capturedResetTokens) tokenFor(email string) string {
	captured.mu.Lock()
	defer captured.mu.Unlock()
	return captured.tokens[email]
}

type apiTestEnv struct {
	app         *fiber.App
	handler     *Handler
	resetTokens *capturedResetTokens
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ledgerly-api.db"))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repos := db.NewRepositories(database)
	resetTokens := &capturedResetTokens{tokens: make(map[string]string)}
	auth := services.NewAuthService(services.AuthRepositories{
		Transactor:         repos.Transactor,
		Users:              repos.Users,
		Sessions:           repos.Sessions,
		VerificationTokens: repos.VerificationTokens,
		Accounts:           repos.Accounts,
	}, services.AuthOptions{
		SecretKey: []byte("api-test-secret-key-of-32-bytes-or-more"),
		Notifier:  resetTokens,
	})
	ledger := services.NewLedgerService(services.LedgerRepositories{
		Transactor:   repos.Transactor,
		Accounts:     repos.Accounts,
		Transactions: repos.Transactions,
		Tags:         repos.Tags,
	}, time.UTC)

	handler := NewHandler(auth, ledger, false)
	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	return &apiTestEnv{app: app, handler: handler, resetTokens: resetTokens}
}

type apiResponse struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (response apiResponse) decode(t *testing.T, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(response.body, target), string(response.body))
}

func (response apiResponse) errorMessage(t *testing.T) string {
	t.Helper()
	payload := map[string]string{}
	response.decode(t, &payload)
	return payload["error"]
}

func (response apiResponse) sessionCookie() (*http.Cookie, bool) {
	for _, cookie := range response.cookies {
		if cookie.Name == sessionCookieName {
			return cookie, true
		}
	}
	return nil, false
}

func (env *apiTestEnv) do(t *testing.T, method string, path string, body any, session string) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if session != "" {
		request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session})
	}

	response, err := env.app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()
	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return apiResponse{status: response.StatusCode, body: payload, cookies: response.Cookies()}
}

// signUp registers a user and returns a live session token.
func (env *apiTestEnv) signUp(t *testing.T, email string, password string) string {
	t.Helper()

	registered := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "API User", "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, registered.status, string(registered.body))

	loggedIn := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, loggedIn.status, string(loggedIn.body))
	cookie, ok := loggedIn.sessionCookie()
	require.True(t, ok, "login must set the session cookie")
	return cookie.Value
}
