// File: internal/domain/user.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the profile returned by GET /api/users/me. Clients treat it as read-only.
type User struct {
	ID       string  `json:"id" yaml:"id"`
	Email    string  `json:"email" yaml:"email"`
	FullName *string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

// Account is the server-side user record kept by the reference backend.
type Account struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;not null"`
	FullName  *string
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HashPassword securely hashes the account's password.
func (a *Account) HashPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the stored hash.
func (a *Account) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
}

// ToUser strips the credential fields.
func (a *Account) ToUser() *User {
	return &User{ID: a.ID, Email: a.Email, FullName: a.FullName}
}
