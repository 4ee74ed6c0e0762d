package memoize

import "github.com/cockroachdb/errors"

var (
	// ErrStoreNotExist indicates the cache store was absent at invocation
	// time. The store is never auto-created; provision it and invoke again.
	ErrStoreNotExist = errors.New("memoize: cache store does not exist")

	// ErrSerialization indicates an argument or result could not be
	// canonically encoded, or a stored entry could not be decoded.
	ErrSerialization = errors.New("memoize: serialization failed")

	// ErrStorage indicates an underlying read or write to the cache store
	// failed. Distinct from ErrStoreNotExist: the store exists but I/O on it
	// did not succeed.
	ErrStorage = errors.New("memoize: storage failure")
)
