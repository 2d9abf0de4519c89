package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// DefaultIdleTimeout is how long an untouched cart stays in memory before it is dropped and reloaded from storage
const DefaultIdleTimeout = time.Hour

type SessionsOption func(*Sessions)

// WithIdleTimeout sets how long an unused store is kept in memory; tie it to the storage TTL
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

type session struct {
	store    *Store
	lastUsed time.Time
}

// Sessions hands out one Store per cart session id. Stores idle for longer than the idle timeout are evicted;
// the next Open reloads them from storage. Two processes writing the same session do not merge; the last save wins.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*session
	storage   Storage
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
}

func NewSessions(storage Storage, logger *zap.Logger, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*session),
		storage:  storage,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		logger:   global.LoggerOrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

func (s *Sessions) NewSessionID() string {
	return uuid.NewString()
}

// Open returns the store for sessionID, restoring it from storage on first use
func (s *Sessions) Open(ctx context.Context, sessionID string) (*Store, error) {
	sessionID, err := validSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	if store := s.touch(sessionID); store != nil {
		return store, nil
	}
	store := NewStore(ctx, sessionID, s.storage, s.logger)
	s.sessions[sessionID] = &session{store: store, lastUsed: s.now()}
	return store, nil
}

// Existing returns the store for sessionID only when it is in memory or has stored data. An unknown session
// yields nil and is not registered.
func (s *Sessions) Existing(ctx context.Context, sessionID string) (*Store, error) {
	sessionID, err := validSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	if store := s.touch(sessionID); store != nil {
		return store, nil
	}
	if s.storage == nil {
		return nil, nil
	}

	data, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to check stored cart", zap.String("cart", sessionID), zap.Error(err))
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	store := newStoreFromData(sessionID, data, s.storage, s.logger)
	s.sessions[sessionID] = &session{store: store, lastUsed: s.now()}
	return store, nil
}

// Forget drops the in-memory store; the next Open reloads it from storage
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports how many stores are held in memory
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// touch must be called with mu held
func (s *Sessions) touch(sessionID string) *Store {
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	entry.lastUsed = s.now()
	return entry.store
}

// sweep evicts idle stores at most once per min(idle, 1m); must be called with mu held
func (s *Sessions) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < min(s.idle, time.Minute) {
		return
	}
	s.lastSweep = now

	var evicted int
	for id, entry := range s.sessions {
		if now.Sub(entry.lastUsed) >= s.idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("evicted idle carts", zap.Int("evicted", evicted), zap.Int("remaining", len(s.sessions)))
	}
}

func validSessionID(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", apperr.New(apperr.KindValidation, "cart session id is required")
	}
	return sessionID, nil
}
