// Package memoize provides persistent memoization for expensive,
// side-effect-free computations. The first invocation runs the computation
// and persists its serialized result; every later invocation with the same
// computation name and argument values returns the persisted result without
// re-running the computation, including across process restarts.
//
// # Wrapping a computation
//
// [Invoke] is the one-shot form, patterned as a read-through helper around an
// [Invoker] closure:
//
//	result, err := memoize.Invoke(ctx, memoize.Config{
//	    Name: "dataset.Summarize",
//	    Args: []any{inputPath, binCount},
//	}, store, func(ctx context.Context) (Summary, error) {
//	    return summarize(ctx, inputPath, binCount)
//	})
//
// [Wrap], [Wrap1] and [Wrap2] are higher-order constructors that take a
// computation and return an equivalent computation with memoization applied.
// Callers use the wrapped function exactly as the original:
//
//	summarize := memoize.Wrap2(store, "dataset.Summarize", summarize)
//	result, err := summarize(ctx, inputPath, binCount)
//
// # Keys
//
// [Key] derives a deterministic identifier from the computation name, the
// positional arguments in order, and the keyword arguments sorted by name.
// The canonical msgpack encoding of that sequence is hashed with xxhash64 to
// a fixed-length hex key used as the storage key/filename. Two calls with
// equal argument values always collide onto the same entry, regardless of
// keyword ordering; distinct arguments or distinct computation names do not
// share entries. Arguments must have stable msgpack encodings — functions,
// channels and other unencodable values return [ErrSerialization].
//
// # Stores
//
// A [Store] must be provisioned before use; the package never creates one.
// This is deliberate: persisting results to disk is an explicit opt-in by the
// operator, and an absent store is a configuration error ([ErrStoreNotExist])
// raised before the computation runs. Three implementations are provided:
//
//   - [NewDirStore] — one file per entry in a pre-existing directory. Writes
//     go through a uniquely named temp file followed by a rename, so a
//     partially written entry is never visible as valid.
//   - [NewSQLite] — entries as BLOBs in a pre-existing SQLite database file
//     (pure Go driver, WAL mode). ":memory:" is accepted for tests.
//   - [NewRedis] — entries in a caller-owned Redis instance under an
//     optional key prefix.
//
// Entries are immortal: nothing in this package expires, evicts or rewrites
// them. Removing stale results is a manual operator action.
//
// # Failure semantics
//
// A failure of the wrapped computation propagates to the caller unchanged
// and nothing is cached, so the next invocation retries from scratch. Store
// read and write failures surface as [ErrStorage]; a read failure on an
// existing-looking entry is a hard error rather than a silent miss, so
// corruption is never papered over by recomputation. Encoding and decoding
// failures surface as [ErrSerialization]. There are no retries anywhere.
//
// # Limitations
//
// The wrapper memoizes the return value, not the side effects: on a hit the
// computation's I/O and logging do not recur. Execution is synchronous with
// no locking; if two processes race the same miss, both compute and both
// write, and the last writer's bytes persist. The package targets
// single-process, repeat-run workflows where recomputation cost vastly
// exceeds the cost of an occasional stale read.
package memoize
