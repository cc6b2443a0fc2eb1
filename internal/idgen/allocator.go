// Package idgen allocates process-unique numeric identifiers for every persisted entity.
//
// # Encoding
//
// Each identifier combines the wall clock in milliseconds with a per-millisecond
// counter in [0, MaxPerMillisecond). Two encodings are supported and one is chosen
// at startup:
//
//	CounterPrefixed:   counter * 10^13 + timestampMillis
//	TimestampPrefixed: timestampMillis * 10^4 + counter
//
// # Usage
//
//	strategy, err := idgen.ParseStrategy(cfg.IDGeneration.Strategy)
//	ids := idgen.NewAllocator(strategy)
//	id := ids.Next()
//
// The allocator is an ordinary value: pass it to whatever needs identifiers.
package idgen

import (
	"sync"
	"time"
)

const (
	// MaxPerMillisecond is the number of identifiers one millisecond can carry.
	MaxPerMillisecond = 10_000

	counterShift   = 10_000_000_000_000 // 10^13
	timestampShift = 10_000             // 10^4
)

// Allocator hands out unique identifiers. All calls are serialized by a single mutex.
type Allocator struct {
	mu            sync.Mutex
	strategy      Strategy
	nowMillis     func() int64
	lastTimestamp int64
	counter       int64
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithClock replaces the millisecond clock. Intended for tests.
func WithClock(nowMillis func() int64) Option {
	return func(a *Allocator) {
		a.nowMillis = nowMillis
	}
}

// NewAllocator creates an allocator using the given encoding.
func NewAllocator(strategy Strategy, opts ...Option) *Allocator {
	a := &Allocator{
		strategy:  strategy,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Strategy returns the encoding this allocator was created with.
func (a *Allocator) Strategy() Strategy {
	return a.strategy
}

// Next returns a new identifier. It never fails; when MaxPerMillisecond identifiers
// were already issued in the current millisecond it busy-waits for the clock to move.
func (a *Allocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	timestamp := a.nowMillis()
	if timestamp == a.lastTimestamp {
		a.counter++
		if a.counter >= MaxPerMillisecond {
			for timestamp == a.lastTimestamp {
				timestamp = a.nowMillis()
			}
			a.lastTimestamp = timestamp
			a.counter = 0
		}
	} else {
		a.lastTimestamp = timestamp
		a.counter = 0
	}

	return a.strategy.Encode(timestamp, a.counter)
}

// Encode combines a millisecond timestamp and a counter into an identifier.
func (s Strategy) Encode(timestampMillis, counter int64) int64 {
	if s == TimestampPrefixed {
		return timestampMillis*timestampShift + counter
	}
	return counter*counterShift + timestampMillis
}

// Decode splits an identifier produced with this strategy back into its
// timestamp and counter.
func (s Strategy) Decode(id int64) (timestampMillis, counter int64) {
	if s == TimestampPrefixed {
		return id / timestampShift, id % timestampShift
	}
	return id % counterShift, id / counterShift
}
