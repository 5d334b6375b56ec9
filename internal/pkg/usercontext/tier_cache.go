package usercontext

import (
	"fmt"
	"time"

	"github.com/clipgate/ClipGate/internal/pkg/cache"
)

// Effective tiers are cached in Redis with a short TTL so every request does
// not hit the users table. Grant and billing writes invalidate the entry, so
// a tier change is visible on the next request instead of at session expiry.
const tierCacheTTL = 5 * time.Minute

// tierStore abstracts the cache backend for tests.
type tierStore interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

type redisTierStore struct{}

func (redisTierStore) Get(key string) (string, error) { return cache.Get(key) }
func (redisTierStore) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}
func (redisTierStore) Delete(key string) error { return cache.Delete(key) }

var tiers tierStore = redisTierStore{}

// TierCacheKey returns the cache key holding a user's effective tier.
func TierCacheKey(userID uint) string {
	return fmt.Sprintf("user:tier:%d", userID)
}

// CachedTier returns the cached effective tier for a user. A cache error or
// an empty value is treated as a miss.
func CachedTier(userID uint) (string, bool) {
	tier, err := tiers.Get(TierCacheKey(userID))
	if err != nil || tier == "" {
		return "", false
	}
	return tier, true
}

// CacheTier stores a user's effective tier. Errors are ignored, the next
// request just reads the database again.
func CacheTier(userID uint, tier string) {
	_ = tiers.Set(TierCacheKey(userID), tier, tierCacheTTL)
}

// InvalidateTier drops the cached tier so the next request re-reads it.
// Called after grant create/revoke and billing subscription sync.
func InvalidateTier(userID uint) {
	_ = tiers.Delete(TierCacheKey(userID))
}
