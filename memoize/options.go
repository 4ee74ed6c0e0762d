package memoize

import "time"

// DefaultQueryTimeout is the per-operation timeout for stores that perform
// I/O over a connection (SQLite, Redis). Prevents indefinite hangs on slow
// or unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a store implementation.
type config struct {
	queryTimeout time.Duration
	prefix       string
}

// Option configures a Store implementation.
type Option func(*config)

func defaultConfig() config {
	return config{queryTimeout: DefaultQueryTimeout}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores
// (SQLite, Redis). Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithPrefix sets the key prefix for namespacing entries.
// Applies to the Redis store. Defaults to empty (no prefix).
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}
