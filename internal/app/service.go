// Package service provides the core business service that implements
// the dependencies required by the HTTP API: accounts, sessions, and
// snapshot persistence.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/focusforge/internal/adapters/repository"
	"github.com/okian/focusforge/internal/domain/progress"
	"github.com/okian/focusforge/pkg/logger"
	"github.com/okian/focusforge/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultSessionTTL   = 7 * 24 * time.Hour
	sessionSweepPeriod  = time.Minute
	metricsUpdatePeriod = 30 * time.Second
)

// session is one issued token.
type session struct {
	username  string
	expiresAt time.Time
}

// Service implements the API dependencies for the FocusForge server.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	sessions   map[string]session
	sessionTTL time.Duration

	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the account store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSessionTTL bounds how long issued tokens stay valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:   make(map[string]session),
		sessionTTL: defaultSessionTTL,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service and begins the session sweep loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory account store")
	}

	go s.sweepLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("accounts", s.store.Count(ctx)),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "service stopped")
}

// sweepLoop drops expired sessions and refreshes gauges.
func (s *Service) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepExpired(time.Now())
			metrics.UpdateAccountsTotal(s.store.Count(ctx))
		}
	}
}

func (s *Service) sweepExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
	metrics.UpdateActiveSessions(len(s.sessions))
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := s.store.CreateAccount(ctx, username, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	metrics.UpdateAccountsTotal(s.store.Count(ctx))
	s.logger.Info(ctx, "account registered", logger.String("username", username))
	return nil
}

// Login authenticates and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, repository.Account, error) {
	acct, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		metrics.RecordAuthFailure()
		return "", repository.Account{}, fmt.Errorf("login: %w", err)
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{username: acct.Username, expiresAt: time.Now().Add(s.sessionTTL)}
	metrics.UpdateActiveSessions(len(s.sessions))
	s.mu.Unlock()

	s.logger.Info(ctx, "session opened", logger.String("username", acct.Username))
	return token, acct, nil
}

// Resume looks up an existing session and returns the stored account.
// Returns repository.ErrNotFound wrapped as a no-session condition when
// the token is unknown or expired.
func (s *Service) Resume(ctx context.Context, token string) (repository.Account, error) {
	username, ok := s.lookup(token)
	if !ok {
		metrics.RecordAuthFailure()
		return repository.Account{}, ErrNoSession
	}
	snap, err := s.store.LoadSnapshot(ctx, username)
	if err != nil {
		return repository.Account{}, fmt.Errorf("resume: %w", err)
	}
	return repository.Account{Username: username, Snapshot: snap}, nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	if _, ok := s.sessions[token]; ok {
		delete(s.sessions, token)
		s.logger.Info(ctx, "session closed")
	}
	metrics.UpdateActiveSessions(len(s.sessions))
	s.mu.Unlock()
}

// Persist overwrites the session owner's stored snapshot. Idempotent.
func (s *Service) Persist(ctx context.Context, token string, snap progress.Snapshot) error {
	username, ok := s.lookup(token)
	if !ok {
		return ErrNoSession
	}
	if err := s.store.SaveSnapshot(ctx, username, snap); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func (s *Service) lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		return "", false
	}
	return sess.username, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	activeSessions := len(s.sessions)
	started := s.started
	s.mu.RUnlock()

	return map[string]interface{}{
		"started":        started,
		"activeSessions": activeSessions,
		"accounts":       s.store.Count(context.Background()),
	}
}
