package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inventory-server-go/internal/domain/account/aggregate"
	"inventory-server-go/internal/domain/account/repository"
	"inventory-server-go/internal/platform/errors"
)

// AccountService owns registration and password verification.
type AccountService struct {
	accountRepo repository.AccountRepository
}

// NewAccountService creates the account service.
func NewAccountService(accountRepo repository.AccountRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*aggregate.Account, error) {
	username = strings.TrimSpace(username)

	if err := aggregate.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "account.register", "failed to check username", err)
	}
	if existing != nil {
		return nil, errors.New(errors.KindConflict, "account.register", "username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(errors.KindPlatform, "account.register", "failed to hash password", err)
	}

	account, err := aggregate.NewAccount(username, email, string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, errors.Wrap(errors.KindDomain, "account.register", "failed to create account", err)
	}

	return account, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords fail with the same error, so responses do not reveal
// which part was wrong.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*aggregate.Account, error) {
	account, err := s.accountRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "account.authenticate", "failed to load account", err)
	}
	if account == nil {
		return nil, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	return account, nil
}

// GetAccount loads an account by id, or reports not_found.
func (s *AccountService) GetAccount(ctx context.Context, id uint) (*aggregate.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "account.get", "failed to load account", err)
	}
	if account == nil {
		return nil, errors.New(errors.KindNotFound, "account.get", "account not found")
	}
	return account, nil
}

// CountAccounts reports the number of registered accounts.
func (s *AccountService) CountAccounts(ctx context.Context) (int64, error) {
	count, err := s.accountRepo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.KindDomain, "account.count", "failed to count accounts", err)
	}
	return count, nil
}

func invalidCredentials() error {
	return errors.New(errors.KindAuth, "account.authenticate", "invalid credentials")
}
