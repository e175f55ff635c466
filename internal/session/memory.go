package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRevoker keeps revocations in process memory. Revocations are lost on
// restart and are not shared between instances.
type MemoryRevoker struct {
	mu      sync.RWMutex
	tokens  map[string]time.Time
	users   map[string]time.Time
	nowFunc func() time.Time
}

// NewMemoryRevoker creates an empty in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		tokens:  make(map[string]time.Time),
		users:   make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// Revoke implements Revoker.
func (r *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[jti] = r.nowFunc().Add(ttl)
	r.sweepLocked()
	return nil
}

// IsRevoked implements Revoker.
func (r *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	expiresAt, ok := r.tokens[jti]
	return ok && r.nowFunc().Before(expiresAt), nil
}

// RevokeUser implements Revoker. The ttl is not needed in memory; entries
// are overwritten by later revocations.
func (r *MemoryRevoker) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = cutoff(r.nowFunc())
	return nil
}

// IsUserRevoked implements Revoker.
func (r *MemoryRevoker) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	at, ok := r.users[userID]
	return ok && issuedAt.Before(at), nil
}

// sweepLocked drops expired token entries. Caller holds mu.
func (r *MemoryRevoker) sweepLocked() {
	now := r.nowFunc()
	for jti, expiresAt := range r.tokens {
		if !now.Before(expiresAt) {
			delete(r.tokens, jti)
		}
	}
}
