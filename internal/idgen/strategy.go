package idgen

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how the timestamp and counter are packed into an identifier.
type Strategy int

const (
	// CounterPrefixed packs ids as counter * 10^13 + timestamp.
	CounterPrefixed Strategy = iota
	// TimestampPrefixed packs ids as timestamp * 10^4 + counter.
	TimestampPrefixed
)

// Configuration names. The upper-case names match the values historically used in
// deployment configuration.
const (
	StrategyNameCounterPrefixed   = "DIGIT_SUFFIX_TIMESTAMP"
	StrategyNameTimestampPrefixed = "TIMESTAMP_DIGIT_SUFFIX"
)

var ErrUnknownStrategy = errors.New("unknown id generation strategy")

// ParseStrategy maps a configuration value to a Strategy. An empty value selects
// CounterPrefixed.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", strings.ToLower(StrategyNameCounterPrefixed), "counter_prefixed":
		return CounterPrefixed, nil
	case strings.ToLower(StrategyNameTimestampPrefixed), "timestamp_prefixed":
		return TimestampPrefixed, nil
	default:
		return CounterPrefixed, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) String() string {
	if s == TimestampPrefixed {
		return StrategyNameTimestampPrefixed
	}
	return StrategyNameCounterPrefixed
}
