package repository

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/focusforge/internal/domain/progress"
)

// MemoryStore is a mutex-guarded in-memory Store. Used by tests and by
// deployments that do not want a database file.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

type memoryAccount struct {
	hash []byte
	snap progress.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*memoryAccount)}
}

// CreateAccount registers username with a fresh zero snapshot.
func (s *MemoryStore) CreateAccount(ctx context.Context, username, password string) error {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return ErrDuplicate
	}
	s.accounts[username] = &memoryAccount{hash: hash, snap: progress.DefaultSnapshot()}
	return nil
}

// Authenticate verifies credentials and returns the account.
func (s *MemoryStore) Authenticate(ctx context.Context, username, password string) (Account, error) {
	username = normalizeUsername(username)

	s.mu.RLock()
	acct, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{Username: username, Snapshot: acct.snap.Clone()}, nil
}

// LoadSnapshot returns the stored snapshot for username.
func (s *MemoryStore) LoadSnapshot(ctx context.Context, username string) (progress.Snapshot, error) {
	username = normalizeUsername(username)

	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[username]
	if !ok {
		return progress.DefaultSnapshot(), ErrNotFound
	}
	return acct.snap.Clone(), nil
}

// SaveSnapshot overwrites the stored snapshot wholesale.
func (s *MemoryStore) SaveSnapshot(ctx context.Context, username string, snap progress.Snapshot) error {
	username = normalizeUsername(username)

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[username]
	if !ok {
		return ErrNotFound
	}
	acct.snap = progress.Sanitize(snap.Clone())
	return nil
}

// Count returns the number of registered accounts.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
