// Package revocation records refresh tokens that were logged out before expiry.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type Store interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// fingerprint keeps raw tokens out of the backing store.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MemoryStore is a single-process Store, used when no Redis address is configured.
type MemoryStore struct {
	revokedTokens map[string]time.Time
	mu            sync.RWMutex
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revokedTokens: make(map[string]time.Time),
		now:           time.Now,
	}
}

func (m *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.revokedTokens {
		if !exp.After(now) {
			delete(m.revokedTokens, k)
		}
	}
	if expiresAt.After(now) {
		m.revokedTokens[fingerprint(token)] = expiresAt
	}
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, revoked := m.revokedTokens[fingerprint(token)]
	return revoked && exp.After(m.now()), nil
}
