package ratelimit

import "sync"

// KeyedLimiter maintains one token bucket per key (typically per API
// key), creating buckets lazily on first use.
type KeyedLimiter struct {
	capacity   int64
	refillRate float64

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewKeyedLimiter creates a keyed limiter whose per-key buckets have the
// given burst capacity and sustained refill rate.
func NewKeyedLimiter(capacity int64, refillRate float64) *KeyedLimiter {
	return &KeyedLimiter{
		capacity:   capacity,
		refillRate: refillRate,
		buckets:    make(map[string]*TokenBucket),
	}
}

// Allow attempts to consume one token from the key's bucket.
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.bucket(key).Allow()
}

// Remaining returns the number of whole tokens left for the key.
func (kl *KeyedLimiter) Remaining(key string) int64 {
	return kl.bucket(key).Remaining()
}

func (kl *KeyedLimiter) bucket(key string) *TokenBucket {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	b, ok := kl.buckets[key]
	if !ok {
		b = NewTokenBucket(kl.capacity, kl.refillRate)
		kl.buckets[key] = b
	}
	return b
}
