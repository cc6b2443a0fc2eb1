package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock reports base for the first frozenCalls calls and base+1 afterwards.
type stepClock struct {
	base        int64
	frozenCalls int
	calls       int
}

func (c *stepClock) now() int64 {
	c.calls++
	if c.calls <= c.frozenCalls {
		return c.base
	}
	return c.base + 1
}

func TestAllocator_Next_Unique(t *testing.T) {
	for _, strategy := range []Strategy{CounterPrefixed, TimestampPrefixed} {
		t.Run(strategy.String(), func(t *testing.T) {
			ids := NewAllocator(strategy)
			seen := make(map[int64]struct{}, 1000)

			for i := 0; i < 1000; i++ {
				id := ids.Next()
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %d", id)
				seen[id] = struct{}{}
			}
		})
	}
}

func TestAllocator_Next_ConcurrentCallersNeverCollide(t *testing.T) {
	for _, strategy := range []Strategy{CounterPrefixed, TimestampPrefixed} {
		t.Run(strategy.String(), func(t *testing.T) {
			ids := NewAllocator(strategy)

			const workers = 16
			const perWorker = 500

			results := make(chan int64, workers*perWorker)
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						results <- ids.Next()
					}
				}()
			}
			wg.Wait()
			close(results)

			seen := make(map[int64]struct{}, workers*perWorker)
			for id := range results {
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %d", id)
				seen[id] = struct{}{}
			}
			assert.Len(t, seen, workers*perWorker)
		})
	}
}

func TestAllocator_Next_DecodesToPastTimestampAndBoundedCounter(t *testing.T) {
	for _, strategy := range []Strategy{CounterPrefixed, TimestampPrefixed} {
		t.Run(strategy.String(), func(t *testing.T) {
			ids := NewAllocator(strategy)

			for i := 0; i < 200; i++ {
				id := ids.Next()
				wall := time.Now().UnixMilli()

				ts, counter := strategy.Decode(id)
				assert.LessOrEqual(t, ts, wall)
				assert.GreaterOrEqual(t, counter, int64(0))
				assert.Less(t, counter, int64(MaxPerMillisecond))
			}
		})
	}
}

func TestAllocator_Next_CounterWithinSameMillisecond(t *testing.T) {
	clock := &stepClock{base: 1_700_000_000_000, frozenCalls: 100}
	ids := NewAllocator(TimestampPrefixed, WithClock(clock.now))

	assert.Equal(t, int64(1_700_000_000_000*10_000), ids.Next())
	assert.Equal(t, int64(1_700_000_000_000*10_000+1), ids.Next())
	assert.Equal(t, int64(1_700_000_000_000*10_000+2), ids.Next())
}

func TestAllocator_Next_CounterPrefixedLayout(t *testing.T) {
	clock := &stepClock{base: 1_700_000_000_000, frozenCalls: 100}
	ids := NewAllocator(CounterPrefixed, WithClock(clock.now))

	assert.Equal(t, int64(1_700_000_000_000), ids.Next())
	assert.Equal(t, int64(10_000_000_000_000+1_700_000_000_000), ids.Next())
}

func TestAllocator_Next_SpinsPastFullMillisecond(t *testing.T) {
	const calls = MaxPerMillisecond + 1

	for _, strategy := range []Strategy{CounterPrefixed, TimestampPrefixed} {
		t.Run(strategy.String(), func(t *testing.T) {
			// Two extra frozen readings force the allocator to poll the clock
			// before the millisecond advances.
			clock := &stepClock{base: 1_700_000_000_000, frozenCalls: calls + 2}
			ids := NewAllocator(strategy, WithClock(clock.now))

			seen := make(map[int64]struct{}, calls)
			var last int64
			for i := 0; i < calls; i++ {
				last = ids.Next()
				_, dup := seen[last]
				require.False(t, dup, "duplicate id %d at call %d", last, i)
				seen[last] = struct{}{}
			}

			assert.Len(t, seen, calls)
			assert.Greater(t, clock.calls, calls, "allocator should have polled the clock while spinning")

			ts, counter := strategy.Decode(last)
			assert.Equal(t, clock.base+1, ts)
			assert.Equal(t, int64(0), counter)
		})
	}
}

func TestAllocator_Next_ResetsCounterOnNewMillisecond(t *testing.T) {
	clock := &stepClock{base: 1_700_000_000_000, frozenCalls: 3}
	ids := NewAllocator(TimestampPrefixed, WithClock(clock.now))

	ids.Next()
	ids.Next()
	ids.Next()
	ts, counter := TimestampPrefixed.Decode(ids.Next())

	assert.Equal(t, clock.base+1, ts)
	assert.Equal(t, int64(0), counter)
}

func TestStrategy_EncodeDecode(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		ts       int64
		counter  int64
		want     int64
	}{
		{"counter prefixed zero counter", CounterPrefixed, 1_700_000_000_123, 0, 1_700_000_000_123},
		{"counter prefixed max counter", CounterPrefixed, 1_700_000_000_123, 9_999, 9_999*10_000_000_000_000 + 1_700_000_000_123},
		{"timestamp prefixed", TimestampPrefixed, 1_700_000_000_123, 42, 1_700_000_000_123*10_000 + 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.strategy.Encode(tt.ts, tt.counter)
			assert.Equal(t, tt.want, id)

			ts, counter := tt.strategy.Decode(id)
			assert.Equal(t, tt.ts, ts)
			assert.Equal(t, tt.counter, counter)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", CounterPrefixed, false},
		{"DIGIT_SUFFIX_TIMESTAMP", CounterPrefixed, false},
		{"digit_suffix_timestamp", CounterPrefixed, false},
		{"counter_prefixed", CounterPrefixed, false},
		{"TIMESTAMP_DIGIT_SUFFIX", TimestampPrefixed, false},
		{" timestamp_prefixed ", TimestampPrefixed, false},
		{"snowflake", CounterPrefixed, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
