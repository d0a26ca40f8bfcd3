package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/ledgerly/internal/models"
	"github.com/terraincognita07/ledgerly/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const SessionLifetime = 30 * 24 * time.Hour

type AuthUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error
	UpdateDisplayName(ctx context.Context, userID uint, displayName string) (int64, error)
}

type AuthSessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (models.Session, bool, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID uint) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AuthVerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Consume(ctx context.Context, id string, email string, purpose string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DefaultAccountCreator interface {
	Create(ctx context.Context, account *models.Account) error
}

type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionCache maps session token hashes to user IDs. Implementations may
// drop entries at any time.
type SessionCache interface {
	Get(ctx context.Context, tokenHash string) (uint, bool, error)
	Set(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error
	Delete(ctx context.Context, tokenHashes ...string) error
}

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email string, token string, expiresAt time.Time) error
}

type AuthRepositories struct {
	Transactor         Transactor
	Users              AuthUserRepository
	Sessions           AuthSessionRepository
	VerificationTokens AuthVerificationTokenRepository
	Accounts           DefaultAccountCreator
}

type AuthOptions struct {
	SecretKey []byte
	Cache     SessionCache
	CacheTTL  time.Duration
	Notifier  ResetNotifier
	Now       func() time.Time
}

type AuthService struct {
	repos     AuthRepositories
	secretKey []byte
	cache     SessionCache
	cacheTTL  time.Duration
	notifier  ResetNotifier
	now       func() time.Time
}

func NewAuthService(repos AuthRepositories, options AuthOptions) *AuthService {
	now := options.Now
	if now == nil {
		now = time.Now
	}
	notifier := options.Notifier
	if notifier == nil {
		notifier = LogResetNotifier{}
	}
	cacheTTL := options.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AuthService{
		repos:     repos,
		secretKey: options.SecretKey,
		cache:     options.Cache,
		cacheTTL:  cacheTTL,
		notifier:  notifier,
		now:       now,
	}
}

type LoginResult struct {
	Token     string
	User      models.User
	ExpiresAt time.Time
}

// Register creates the user and its default zero-balance accounts together.
func (service *AuthService) Register(ctx context.Context, input RegistrationInput) (models.User, error) {
	normalized, err := normalizeRegistrationInput(input)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.repos.Users.ExistsByEmail(ctx, normalized.Email)
	if err != nil {
		return models.User{}, internalError(err)
	}
	if exists {
		return models.User{}, ErrDuplicateEmail
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(normalized.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, internalError(err)
	}

	user := models.User{
		Email:        normalized.Email,
		DisplayName:  normalized.Name,
		PasswordHash: string(passwordHash),
		Plan:         normalized.Plan,
		CreatedAt:    service.now().UTC(),
	}
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		if err := service.repos.Users.Create(ctx, &user); err != nil {
			return err
		}
		for _, defaults := range models.DefaultAccounts() {
			account := models.Account{
				UserID:    user.ID,
				Type:      defaults.Type,
				Name:      defaults.Name,
				CreatedAt: user.CreatedAt,
				UpdatedAt: user.CreatedAt,
			}
			if err := service.repos.Accounts.Create(ctx, &account); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.User{}, ErrDuplicateEmail
	case err != nil:
		return models.User{}, internalError(err)
	}
	return user, nil
}

// Login does not say whether the email or the password was wrong.
func (service *AuthService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, invalidf("email and password are required")
	}

	user, err := service.repos.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, internalError(err)
	}
	if !user.HasPassword() {
		return LoginResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := security.NewSessionToken()
	if err != nil {
		return LoginResult{}, internalError(err)
	}
	now := service.now().UTC()
	session := models.Session{
		TokenHash: security.HashSessionToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(SessionLifetime),
		CreatedAt: now,
	}
	if err := service.repos.Sessions.Create(ctx, &session); err != nil {
		return LoginResult{}, internalError(err)
	}
	return LoginResult{Token: token, User: user, ExpiresAt: session.ExpiresAt}, nil
}

// ResolveSession returns nil without an error for unknown, malformed or
// expired tokens.
func (service *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if !security.LooksLikeSessionToken(token) {
		return nil, nil
	}
	tokenHash := security.HashSessionToken(token)

	if userID, ok := service.cachedUserID(ctx, tokenHash); ok {
		user, err := service.repos.Users.FindByID(ctx, userID)
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalError(err)
		}
		service.evict(ctx, tokenHash)
		return nil, nil
	}

	session, found, err := service.repos.Sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, internalError(err)
	}
	now := service.now()
	if !found || !session.Valid(now) {
		return nil, nil
	}

	user, err := service.repos.Users.FindByID(ctx, session.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError(err)
	}

	service.remember(ctx, tokenHash, user.ID, session.ExpiresAt.Sub(now))
	return &user, nil
}

func (service *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	tokenHash := security.HashSessionToken(token)
	service.evict(ctx, tokenHash)
	if err := service.repos.Sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return internalError(err)
	}
	return nil
}

// ResetPasswordRequest issues a one-hour single-use reset token and hands it
// to the notifier. The password itself is untouched.
func (service *AuthService) ResetPasswordRequest(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalidf("email is required")
	}

	exists, err := service.repos.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", internalError(err)
	}
	if !exists {
		return "", ErrNotFound
	}

	now := service.now().UTC()
	row := models.VerificationToken{
		ID:        uuid.NewString(),
		Email:     email,
		Purpose:   models.VerificationPurposePasswordReset,
		ExpiresAt: now.Add(passwordResetTokenTTL),
		CreatedAt: now,
	}
	token, err := BuildPasswordResetToken(service.secretKey, row.ID, row.Email, now, row.ExpiresAt)
	if err != nil {
		return "", internalError(err)
	}
	if err := service.repos.VerificationTokens.Create(ctx, &row); err != nil {
		return "", internalError(err)
	}

	if err := service.notifier.NotifyPasswordReset(ctx, email, token, row.ExpiresAt); err != nil {
		slog.WarnContext(ctx, "password reset notification failed", "error", err)
	}
	return token, nil
}

// ConfirmPasswordReset consumes the reset token, stores the new password and
// revokes every session of the user.
func (service *AuthService) ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return invalidf("%s", err.Error())
	}

	now := service.now()
	claims, err := ParsePasswordResetToken(service.secretKey, token, now)
	if err != nil {
		return ErrInvalidResetToken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err)
	}

	var revoked []string
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		consumed, err := service.repos.VerificationTokens.Consume(ctx, claims.ID, claims.Subject, models.VerificationPurposePasswordReset, now.UTC())
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidResetToken
		}

		user, err := service.repos.Users.FindByEmail(ctx, claims.Subject)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		if err != nil {
			return err
		}
		revoked, err = service.rotatePassword(ctx, user.ID, passwordHash)
		return err
	})
	switch {
	case errors.Is(err, ErrInvalidResetToken):
		return ErrInvalidResetToken
	case err != nil:
		return internalError(err)
	}

	service.evict(ctx, revoked...)
	return nil
}

// SetPassword replaces the password of the user with this exact email and
// revokes all of their sessions. It backs operator tooling and skips the
// reset token.
func (service *AuthService) SetPassword(ctx context.Context, email string, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return invalidf("%s", err.Error())
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err)
	}

	var revoked []string
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		user, err := service.repos.Users.FindByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			return err
		}
		revoked, err = service.rotatePassword(ctx, user.ID, passwordHash)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case err != nil:
		return internalError(err)
	}

	service.evict(ctx, revoked...)
	return nil
}

// UpdateProfile renames the user and returns the stored result.
func (service *AuthService) UpdateProfile(ctx context.Context, userID uint, name string) (models.User, error) {
	name, err := normalizeDisplayName(name)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = service.repos.Transactor.InTransaction(ctx, func(ctx context.Context) error {
		updated, err := service.repos.Users.UpdateDisplayName(ctx, userID, name)
		if err != nil {
			return err
		}
		if updated == 0 {
			return gorm.ErrRecordNotFound
		}
		user, err = service.repos.Users.FindByID(ctx, userID)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.User{}, ErrNotFound
	case err != nil:
		return models.User{}, internalError(err)
	}
	return user, nil
}

func (service *AuthService) rotatePassword(ctx context.Context, userID uint, passwordHash []byte) ([]string, error) {
	if err := service.repos.Users.UpdatePasswordHash(ctx, userID, string(passwordHash)); err != nil {
		return nil, err
	}
	return service.repos.Sessions.DeleteByUser(ctx, userID)
}

// PurgeExpired removes sessions and verification tokens past their expiry.
func (service *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	now := service.now().UTC()
	sessions, err := service.repos.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, internalError(err)
	}
	tokens, err := service.repos.VerificationTokens.DeleteExpired(ctx, now)
	if err != nil {
		return sessions, internalError(err)
	}
	return sessions + tokens, nil
}

func (service *AuthService) cachedUserID(ctx context.Context, tokenHash string) (uint, bool) {
	if service.cache == nil {
		return 0, false
	}
	userID, ok, err := service.cache.Get(ctx, tokenHash)
	if err != nil {
		slog.WarnContext(ctx, "session cache read failed", "error", err)
		return 0, false
	}
	return userID, ok
}

// remember never caches an entry past the session's own expiry.
func (service *AuthService) remember(ctx context.Context, tokenHash string, userID uint, remaining time.Duration) {
	if service.cache == nil || remaining <= 0 {
		return
	}
	ttl := min(service.cacheTTL, remaining)
	if err := service.cache.Set(ctx, tokenHash, userID, ttl); err != nil {
		slog.WarnContext(ctx, "session cache write failed", "error", err)
	}
}

func (service *AuthService) evict(ctx context.Context, tokenHashes ...string) {
	if service.cache == nil || len(tokenHashes) == 0 {
		return
	}
	if err := service.cache.Delete(ctx, tokenHashes...); err != nil {
		slog.WarnContext(ctx, "session cache delete failed", "error", err)
	}
}

// LogResetNotifier writes reset tokens to the application log. It stands in
// for an email channel.
type LogResetNotifier struct{}

func (LogResetNotifier) NotifyPasswordReset(ctx context.Context, email string, token string, expiresAt time.Time) error {
	slog.InfoContext(ctx, "password reset requested", "email", email, "token", token, "expires_at", expiresAt)
	return nil
}
