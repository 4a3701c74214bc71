package ai

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// BudgetChecker checks and records token usage against budgets.
type BudgetChecker interface {
	// Check returns true if key has budget remaining.
	Check(ctx context.Context, key string) (bool, error)
	// Record adds token usage to key.
	Record(ctx context.Context, key string, tokens int) error
	// Usage returns the tokens used by key and its limit (0 = unlimited).
	Usage(ctx context.Context, key string) (used int64, limit int64, err error)
}

// CredentialKey derives a stable budget key from a credential without
// keeping the credential itself.
func CredentialKey(credential string) string {
	sum := blake2b.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8])
}

// InMemoryBudget is an in-process budget tracker.
type InMemoryBudget struct {
	mu           sync.RWMutex
	defaultLimit int64
	budgets      map[string]int64 // key -> budget limit
	usage        map[string]int64 // key -> tokens used
}

// NewInMemoryBudget creates a tracker; keys without an explicit budget get
// defaultLimit, where 0 means unlimited.
func NewInMemoryBudget(defaultLimit int64) *InMemoryBudget {
	return &InMemoryBudget{
		defaultLimit: defaultLimit,
		budgets:      make(map[string]int64),
		usage:        make(map[string]int64),
	}
}

// SetBudget sets the token budget for key.
func (b *InMemoryBudget) SetBudget(key string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[key] = tokens
}

func (b *InMemoryBudget) limit(key string) int64 {
	if limit, ok := b.budgets[key]; ok {
		return limit
	}
	return b.defaultLimit
}

func (b *InMemoryBudget) Check(_ context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	limit := b.limit(key)
	if limit <= 0 {
		return true, nil
	}
	return b.usage[key] < limit, nil
}

func (b *InMemoryBudget) Record(_ context.Context, key string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[key] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(_ context.Context, key string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[key], b.limit(key), nil
}
