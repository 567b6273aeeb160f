package automaton

// Config controls automaton construction.
//
// Example:
//
//	config := automaton.DefaultConfig()
//	config.MaxStates = 1 << 16 // Reject very large pattern sets early
//	a, err := automaton.Build(patterns, config)
type Config struct {
	// ASCIICaseInsensitive folds ASCII letters so that 'A' and 'a' match
	// each other. Bytes >= 0x80 are always compared exactly.
	// Default: true
	ASCIICaseInsensitive bool

	// EnablePrefilter lets the scanner skip ahead with memchr while the
	// automaton sits in its start state. It only applies when at most three
	// distinct bytes leave the start state. A set of exactly one non-empty
	// pattern is searched with a rare-byte substring search instead.
	// Default: true
	EnablePrefilter bool

	// MaxPatterns caps the number of patterns accepted by a Builder.
	// Default: 65536
	MaxPatterns int

	// MaxStates caps the number of automaton states, including the dead and
	// start states. Each state costs AlphabetLen()*4 bytes of transitions.
	// Default: 1048576
	MaxStates int
}

// DefaultConfig returns the configuration used by the memory boundary:
// ASCII case-insensitive matching with the start-byte prefilter enabled.
func DefaultConfig() Config {
	return Config{
		ASCIICaseInsensitive: true,
		EnablePrefilter:      true,
		MaxPatterns:          1 << 16,
		MaxStates:            1 << 20,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxPatterns: 1 to 16,777,216
//   - MaxStates: 2 to 67,108,864
func (c Config) Validate() error {
	if c.MaxPatterns < 1 || c.MaxPatterns > 1<<24 {
		return &ConfigError{
			Field:   "MaxPatterns",
			Message: "must be between 1 and 16,777,216",
		}
	}
	if c.MaxStates < 2 || c.MaxStates > 1<<26 {
		return &ConfigError{
			Field:   "MaxStates",
			Message: "must be between 2 and 67,108,864",
		}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "automaton: invalid config: " + e.Field + ": " + e.Message
}
