package memoize

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Key derives the deterministic cache key for one call: the computation name,
// the positional arguments in order, and the keyword arguments sorted by
// name are msgpack-encoded into an xxhash64 digest, and the sum is returned
// as a fixed-length hex string. Calls with equal argument values produce the
// same key no matter how the keyword arguments were ordered. Values without
// a stable msgpack encoding return ErrSerialization.
func Key(name string, args []any, kwargs map[string]any) (string, error) {
	h := xxhash.New()
	enc := msgpack.NewEncoder(h)
	if err := enc.EncodeString(name); err != nil {
		return "", errors.Mark(errors.Wrap(err, "memoize: encode computation name"), ErrSerialization)
	}
	if err := enc.EncodeArrayLen(len(args)); err != nil {
		return "", errors.Mark(errors.Wrap(err, "memoize: encode arguments"), ErrSerialization)
	}
	for i, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return "", errors.Mark(errors.Wrapf(err, "memoize: encode positional argument %d", i), ErrSerialization)
		}
	}
	// Maps iterate in random order, so the keyword arguments are encoded as
	// sorted key/value pairs to keep the digest canonical.
	names := make([]string, 0, len(kwargs))
	for k := range kwargs {
		names = append(names, k)
	}
	sort.Strings(names)
	if err := enc.EncodeMapLen(len(kwargs)); err != nil {
		return "", errors.Mark(errors.Wrap(err, "memoize: encode keyword arguments"), ErrSerialization)
	}
	for _, k := range names {
		if err := enc.EncodeString(k); err != nil {
			return "", errors.Mark(errors.Wrapf(err, "memoize: encode keyword argument name %q", k), ErrSerialization)
		}
		if err := enc.Encode(kwargs[k]); err != nil {
			return "", errors.Mark(errors.Wrapf(err, "memoize: encode keyword argument %q", k), ErrSerialization)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
