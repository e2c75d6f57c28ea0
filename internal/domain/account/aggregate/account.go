package aggregate

import (
	"strings"
	"time"

	"inventory-server-go/internal/platform/errors"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// Account is a registered user of the inventory API.
type Account struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewAccount builds an account from a username, optional email, and a
// pre-computed password hash.
func NewAccount(username, email, passwordHash string) (*Account, error) {
	now := time.Now()
	account := &Account{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

// Validate enforces the account invariants.
func (a *Account) Validate() error {
	if len(a.Username) < minUsernameLength {
		return errors.New(errors.KindDomain, "account.validate", "username must be at least 3 characters")
	}
	if a.PasswordHash == "" {
		return errors.New(errors.KindDomain, "account.validate", "password hash is required")
	}
	return nil
}

// ValidatePassword checks the plaintext password policy. Runs before
// hashing, which destroys the length information.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New(errors.KindDomain, "account.validate", "password must be at least 8 characters")
	}
	return nil
}
