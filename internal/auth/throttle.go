package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AttemptRecord tracks consecutive failed logins for one identity.
type AttemptRecord struct {
	Count       int
	LastAttempt time.Time
	LockedUntil *time.Time
}

// AttemptStore holds attempt records keyed by normalized email.
type AttemptStore interface {
	Get(ctx context.Context, identity string) (AttemptRecord, bool, error)
	// Increment bumps the failure count and returns the updated record.
	Increment(ctx context.Context, identity string, at time.Time) (AttemptRecord, error)
	Lock(ctx context.Context, identity string, until time.Time) error
	Delete(ctx context.Context, identity string) error
}

// MemoryAttemptStore is an AttemptStore for a single process.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	records map[string]AttemptRecord
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{records: make(map[string]AttemptRecord)}
}

func (s *MemoryAttemptStore) Get(_ context.Context, identity string) (AttemptRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	return rec, ok, nil
}

func (s *MemoryAttemptStore) Increment(_ context.Context, identity string, at time.Time) (AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[identity]
	rec.Count++
	rec.LastAttempt = at
	s.records[identity] = rec
	return rec, nil
}

func (s *MemoryAttemptStore) Lock(_ context.Context, identity string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[identity]
	rec.LockedUntil = &until
	s.records[identity] = rec
	return nil
}

func (s *MemoryAttemptStore) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
	return nil
}

// ThrottleStatus is the result of a pre-login check.
type ThrottleStatus struct {
	Allowed     bool
	Attempts    int
	RetryAfter  time.Duration
	LockedUntil time.Time
}

// Guard limits failed logins per identity. It must be consulted before any
// credential lookup.
type Guard struct {
	store       AttemptStore
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

type GuardOption func(*Guard)

func WithGuardClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func NewGuard(store AttemptStore, maxAttempts int, lockout time.Duration, logger *slog.Logger, opts ...GuardOption) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 300 * time.Second
	}
	g := &Guard{
		store:       store,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) MaxAttempts() int {
	return g.maxAttempts
}

// Check reports whether identity may attempt a login now. An expired lock
// clears the record so the identity starts from zero.
func (g *Guard) Check(ctx context.Context, identity string) (ThrottleStatus, error) {
	rec, ok, err := g.store.Get(ctx, identity)
	if err != nil {
		return ThrottleStatus{}, err
	}
	if !ok {
		return ThrottleStatus{Allowed: true}, nil
	}

	now := g.now()
	if rec.LockedUntil != nil {
		if now.Before(*rec.LockedUntil) {
			return ThrottleStatus{
				Allowed:     false,
				Attempts:    rec.Count,
				RetryAfter:  rec.LockedUntil.Sub(now),
				LockedUntil: *rec.LockedUntil,
			}, nil
		}
		if err := g.store.Delete(ctx, identity); err != nil {
			return ThrottleStatus{}, err
		}
		g.logger.InfoContext(ctx, "login lockout expired", "identity", identity)
		return ThrottleStatus{Allowed: true}, nil
	}
	return ThrottleStatus{Allowed: true, Attempts: rec.Count}, nil
}

// RecordFailure counts a failed attempt and locks the identity once the
// limit is reached.
func (g *Guard) RecordFailure(ctx context.Context, identity string) (ThrottleStatus, error) {
	now := g.now()
	rec, err := g.store.Increment(ctx, identity, now)
	if err != nil {
		return ThrottleStatus{}, err
	}
	if rec.Count < g.maxAttempts {
		return ThrottleStatus{Allowed: true, Attempts: rec.Count}, nil
	}

	until := now.Add(g.lockout)
	if err := g.store.Lock(ctx, identity, until); err != nil {
		return ThrottleStatus{}, err
	}
	g.logger.WarnContext(ctx, "login locked out", "identity", identity, "attempts", rec.Count, "locked_until", until)
	return ThrottleStatus{
		Allowed:     false,
		Attempts:    rec.Count,
		RetryAfter:  g.lockout,
		LockedUntil: until,
	}, nil
}

func (g *Guard) RecordSuccess(ctx context.Context, identity string) error {
	return g.store.Delete(ctx, identity)
}
