package verify

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// CoinFlip is a development stand-in that judges answers at random.
// Safe for concurrent use.
type CoinFlip struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoinFlip creates a time-seeded coin-flip verifier.
func NewCoinFlip() *CoinFlip {
	return NewCoinFlipWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewCoinFlipWithSource creates a coin-flip verifier over an explicit random
// source. Tests use a fixed seed for deterministic verdicts.
func NewCoinFlipWithSource(src rand.Source) *CoinFlip {
	return &CoinFlip{rng: rand.New(src)}
}

// Verify flips the coin. It never fails.
func (c *CoinFlip) Verify(_ context.Context, _ string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rng.Intn(2) == 0 {
		return OutcomeSuccess, nil
	}
	return OutcomeFailed, nil
}

var _ Verifier = (*CoinFlip)(nil)
