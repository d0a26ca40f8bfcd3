package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/ledgerly/internal/models"
)

const passwordResetTokenTTL = time.Hour

var (
	ErrPasswordResetTokenMissing        = errors.New("missing reset token")
	ErrPasswordResetTokenMalformed      = errors.New("malformed reset token")
	ErrPasswordResetTokenInvalidPurpose = errors.New("invalid reset token purpose")
	ErrPasswordResetTokenExpired        = errors.New("expired reset token")
)

// PasswordResetClaims identify the verification row (jti) and the email it
// was issued for (sub).
type PasswordResetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func BuildPasswordResetToken(secretKey []byte, tokenID string, email string, issuedAt time.Time, expiresAt time.Time) (string, error) {
	claims := PasswordResetClaims{
		Purpose: models.VerificationPurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

func ParsePasswordResetToken(secretKey []byte, rawToken string, now time.Time) (*PasswordResetClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrPasswordResetTokenMissing
	}

	claims := &PasswordResetClaims{}
	_, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(*jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrPasswordResetTokenExpired
	case err != nil:
		return nil, ErrPasswordResetTokenMalformed
	}
	if claims.Purpose != models.VerificationPurposePasswordReset {
		return nil, ErrPasswordResetTokenInvalidPurpose
	}
	if strings.TrimSpace(claims.ID) == "" || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrPasswordResetTokenMalformed
	}
	return claims, nil
}
