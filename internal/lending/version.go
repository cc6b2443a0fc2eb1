package lending

import "fmt"

// Versioned is implemented by every entity guarded by optimistic concurrency.
// Mutations take the version the caller observed and either apply completely,
// advancing the version by one, or fail with ErrStaleState and change nothing.
type Versioned interface {
	Version() int64
}

// CheckVersion returns ErrStaleState unless expected equals current.
func CheckVersion(current, expected int64) error {
	if current != expected {
		return fmt.Errorf("%w: expected version %d, current version is %d", ErrStaleState, expected, current)
	}
	return nil
}
