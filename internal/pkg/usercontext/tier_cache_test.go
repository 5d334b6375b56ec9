package usercontext

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTierStore struct {
	values map[string]string
	err    error
}

func newFakeTierStore() *fakeTierStore {
	return &fakeTierStore{values: make(map[string]string)}
}

func (f *fakeTierStore) Get(key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (f *fakeTierStore) Set(key string, value interface{}, expiration time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value.(string)
	return nil
}

func (f *fakeTierStore) Delete(key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.values, key)
	return nil
}

func swapTierStore(t *testing.T, store tierStore) {
	t.Helper()
	prev := tiers
	tiers = store
	t.Cleanup(func() { tiers = prev })
}

func TestCachedTierRoundTrip(t *testing.T) {
	swapTierStore(t, newFakeTierStore())

	_, ok := CachedTier(7)
	assert.False(t, ok)

	CacheTier(7, "premium")
	tier, ok := CachedTier(7)
	assert.True(t, ok)
	assert.Equal(t, "premium", tier)
}

func TestInvalidateTierDropsCachedValue(t *testing.T) {
	swapTierStore(t, newFakeTierStore())

	CacheTier(7, "premium")
	InvalidateTier(7)

	_, ok := CachedTier(7)
	assert.False(t, ok)
}

func TestCachedTierTreatsErrorsAsMiss(t *testing.T) {
	swapTierStore(t, &fakeTierStore{err: errors.New("redis down")})

	CacheTier(7, "premium")
	_, ok := CachedTier(7)
	assert.False(t, ok)
}

func TestTierCacheKeyIsPerUser(t *testing.T) {
	assert.Equal(t, "user:tier:7", TierCacheKey(7))
	assert.NotEqual(t, TierCacheKey(7), TierCacheKey(8))
}
