package auth

import (
	"context"
	"sync"
	"time"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Create(_ context.Context, acc *Account) error {
	if acc.hasPendingPassword() {
		return ErrUnhashedPassword
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, v := range repo.accounts {
		if v.Username == acc.Username || v.Email == acc.Email {
			return ErrExistingAccount
		}
	}

	now := time.Now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now
	c := *acc
	repo.accounts[acc.ID] = &c
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	if !isValidID(string(id)) {
		return nil, ErrNotFound
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if a, ok := repo.accounts[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if username != "" {
		if a := repo.find(func(a *Account) bool { return a.Username == username }); a != nil {
			return a, nil
		}
	}
	if email != "" {
		if a := repo.find(func(a *Account) bool { return a.Email == email }); a != nil {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// find returns a copy of the first account matching fn. Callers hold the lock.
func (repo *accountRepository) find(fn func(*Account) bool) *Account {
	for _, v := range repo.accounts {
		if fn(v) {
			c := *v
			return &c
		}
	}
	return nil
}

func (repo *accountRepository) SetRefreshToken(_ context.Context, id ID, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	a, ok := repo.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.RefreshToken = token
	a.UpdatedAt = time.Now().UTC()
	return nil
}
