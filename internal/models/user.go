package models

import "time"

const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanFamily  = "family"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string    `gorm:"not null" json:"name"`
	PasswordHash string    `gorm:"not null;default:''" json:"-"`
	Plan         string    `gorm:"not null;default:free" json:"plan"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func IsKnownPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPremium, PlanFamily:
		return true
	default:
		return false
	}
}

// HasPassword reports whether the user can sign in with a password.
// Accounts created through an external provider carry no hash.
func (user *User) HasPassword() bool {
	return user != nil && user.PasswordHash != ""
}
