package script

// Config defines script runtime limits
type Config struct {
	MaxCallStackSize int  // Maximum JS call depth; 0 keeps the goja default
	EnableConsole    bool // Route console.* to the invocation log channel
}

// DefaultConfig returns the configuration used by the server
func DefaultConfig() Config {
	return Config{
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// exitSignal carries the code passed to the global exit function.
type exitSignal struct {
	code int
}
