package memoize

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// EntryExtension is the filename suffix for entries in a DirStore.
const EntryExtension = ".msgpack"

type dirStore struct {
	dir string
}

var _ Store = (*dirStore)(nil)

// NewDirStore returns a Store holding one file per entry in dir. The
// directory must already exist — it is never created here, so cache writes
// are always an intentional, visible opt-in by the operator. An absent
// directory is reported as ErrStoreNotExist, both at construction and on
// every later invocation.
func NewDirStore(dir string) (Store, error) {
	s := &dirStore{dir: dir}
	if err := s.Exists(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *dirStore) Exists(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if os.IsNotExist(err) {
		return errors.Mark(errors.Newf("memoize: cache store %s does not exist, create it to opt in to caching", s.dir), ErrStoreNotExist)
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "memoize: stat cache store %s", s.dir), ErrStorage)
	}
	if !info.IsDir() {
		return errors.Mark(errors.Newf("memoize: cache store %s is not a directory", s.dir), ErrStoreNotExist)
	}
	return nil
}

func (s *dirStore) path(key string) string {
	return filepath.Join(s.dir, key+EntryExtension)
}

func (s *dirStore) Read(_ context.Context, key string) (bool, []byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Mark(errors.Wrapf(err, "memoize: read cache entry %s", key), ErrStorage)
	}
	return true, data, nil
}

func (s *dirStore) Write(_ context.Context, key string, data []byte) error {
	// Write through a uniquely named temp file in the same directory and
	// rename into place, so a crashed or interrupted write never leaves a
	// partial entry visible as valid. Racing writers both succeed and the
	// last rename wins.
	tmp := s.path(key) + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Mark(errors.Wrapf(err, "memoize: write cache entry %s", key), ErrStorage)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		_ = os.Remove(tmp)
		return errors.Mark(errors.Wrapf(err, "memoize: commit cache entry %s", key), ErrStorage)
	}
	return nil
}

func (s *dirStore) Close() error {
	return nil
}
