package models

import "time"

type Session struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// Valid reports whether the session is still inside its fixed window.
func (session *Session) Valid(now time.Time) bool {
	return session != nil && now.Before(session.ExpiresAt)
}

const VerificationPurposePasswordReset = "password_reset"

type VerificationToken struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"not null;index"`
	Purpose   string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}
