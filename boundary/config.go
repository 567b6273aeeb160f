package boundary

import (
	"log/slog"

	"github.com/coregx/acbridge/automaton"
)

// Config controls the boundary operations of an Engine.
type Config struct {
	// Automaton configures every automaton built by Construct.
	Automaton automaton.Config

	// MaxMatchers bounds the registry created by NewRegistry. Zero means the
	// full 32-bit handle space.
	//
	// Default: 0
	MaxMatchers int

	// AllowBinaryHaystack skips UTF-8 validation of scan input. Patterns
	// are always validated.
	//
	// Default: false
	AllowBinaryHaystack bool

	// Cache, when set, shares compiled automatons between Construct calls
	// with identical pattern text. Nil compiles on every call.
	Cache *Cache

	// Logger receives per-call debug records and warnings for rejected
	// calls. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by the wire protocol:
// ASCII case-insensitive matching with the start-byte prefilter enabled and
// text-only haystacks.
func DefaultConfig() Config {
	return Config{
		Automaton: automaton.DefaultConfig(),
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if err := c.Automaton.Validate(); err != nil {
		return &ConfigError{Field: "Automaton", Message: err.Error()}
	}
	if c.MaxMatchers < 0 {
		return &ConfigError{Field: "MaxMatchers", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents an invalid engine configuration.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "boundary: invalid config: " + e.Field + " " + e.Message
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
