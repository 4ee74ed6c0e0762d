package memoize

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dylanhross/dhr-util/logger"
)

// Store is the persistent namespace holding serialized results. A store is
// provisioned by the operator ahead of time and outlives any single process;
// implementations report an absent store via Exists rather than creating it.
type Store interface {
	// Exists verifies the store has been provisioned. It returns an error
	// marked with ErrStoreNotExist when the store is absent.
	Exists(ctx context.Context) error
	// Read retrieves the entry under key. A missing entry is (false, nil,
	// nil); a failed read of an existing entry is a hard error.
	Read(ctx context.Context, key string) (bool, []byte, error)
	// Write persists the entry under key. An interrupted write must never
	// leave a partial entry visible as valid.
	Write(ctx context.Context, key string, data []byte) error
	// Close releases any resources held by the store.
	Close() error
}

// Invoker is the body of a wrapped computation.
type Invoker[T any] func(ctx context.Context) (T, error)

// Config configures one memoized invocation.
type Config struct {
	// Name is the qualified identity of the computation
	// (e.g. "rnaseq.CountFeatures"). Required.
	Name string
	// Args are the positional argument values, order-sensitive.
	Args []any
	// Kwargs are named argument values; ordering is canonicalized so
	// logically identical calls collide correctly.
	Kwargs map[string]any
	// Logger, when set, reports hits and misses at debug level.
	Logger logger.Logger
}

// Invoke executes one memoized call. It verifies the store exists before
// anything else, derives the key for (config.Name, config.Args,
// config.Kwargs), and either returns the decoded stored result or runs
// invoke, persists its result and returns it. A failure from invoke is
// propagated untouched and nothing is cached. Side effects of the
// computation do not recur on a hit — the return value is what's memoized.
func Invoke[T any](ctx context.Context, config Config, store Store, invoke Invoker[T]) (T, error) {
	var zero T
	if config.Name == "" {
		return zero, errors.New("memoize: Config.Name is required")
	}
	if err := store.Exists(ctx); err != nil {
		return zero, err
	}
	key, err := Key(config.Name, config.Args, config.Kwargs)
	if err != nil {
		return zero, err
	}
	found, data, err := store.Read(ctx, key)
	if err != nil {
		return zero, err
	}
	if found {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			return zero, errors.Mark(errors.Wrapf(err, "memoize: decode cached result for %s (entry %s)", config.Name, key), ErrSerialization)
		}
		if config.Logger != nil {
			config.Logger.Debug("%s: entry %s exists, loading from cache", config.Name, key)
		}
		return result, nil
	}
	if config.Logger != nil {
		config.Logger.Debug("%s: entry %s not found, creating cache", config.Name, key)
	}
	result, err := invoke(ctx)
	if err != nil {
		// Computation failures pass through unchanged and unmemoized; the
		// next invocation retries from scratch.
		return zero, err
	}
	data, err = msgpack.Marshal(result)
	if err != nil {
		return zero, errors.Mark(errors.Wrapf(err, "memoize: encode result for %s", config.Name), ErrSerialization)
	}
	if err := store.Write(ctx, key, data); err != nil {
		return zero, err
	}
	return result, nil
}

// Fn is a computation taking variadic positional arguments.
type Fn[T any] func(ctx context.Context, args ...any) (T, error)

// Wrap returns a memoizing equivalent of fn, identified by name. The wrapped
// function has the same call and return conventions as the original.
func Wrap[T any](store Store, name string, fn Fn[T]) Fn[T] {
	return func(ctx context.Context, args ...any) (T, error) {
		return Invoke(ctx, Config{Name: name, Args: args}, store, func(ctx context.Context) (T, error) {
			return fn(ctx, args...)
		})
	}
}

// Wrap1 is Wrap for a computation with one typed argument.
func Wrap1[A, T any](store Store, name string, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		return Invoke(ctx, Config{Name: name, Args: []any{a}}, store, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		})
	}
}

// Wrap2 is Wrap for a computation with two typed arguments.
func Wrap2[A, B, T any](store Store, name string, fn func(context.Context, A, B) (T, error)) func(context.Context, A, B) (T, error) {
	return func(ctx context.Context, a A, b B) (T, error) {
		return Invoke(ctx, Config{Name: name, Args: []any{a, b}}, store, func(ctx context.Context) (T, error) {
			return fn(ctx, a, b)
		})
	}
}
