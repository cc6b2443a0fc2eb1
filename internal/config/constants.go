package config

const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./librarian.db"

	// DefaultIDGenerationStrategy encodes the per-millisecond counter in the high digits.
	DefaultIDGenerationStrategy = "DIGIT_SUFFIX_TIMESTAMP"
)
