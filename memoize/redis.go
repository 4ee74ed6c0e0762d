package memoize

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	cfg    config
}

var _ Store = (*redisStore)(nil)

// NewRedis returns a Store backed by Redis. The caller owns the redis.Client
// lifecycle — Close is a no-op on the client. An optional key prefix
// (WithPrefix) namespaces multiple stores on the same instance. Entries are
// written without a TTL.
func NewRedis(client *redis.Client, opts ...Option) Store {
	return &redisStore{client: client, cfg: applyOptions(opts)}
}

func (s *redisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *redisStore) prefixKey(key string) string {
	if s.cfg.prefix == "" {
		return key
	}
	return s.cfg.prefix + ":" + key
}

func (s *redisStore) Exists(ctx context.Context) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if err := s.client.Ping(qctx).Err(); err != nil {
		return errors.Mark(errors.Wrap(err, "memoize: cache store unreachable"), ErrStoreNotExist)
	}
	return nil
}

func (s *redisStore) Read(ctx context.Context, key string) (bool, []byte, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Mark(errors.Wrapf(err, "memoize: read cache entry %s", key), ErrStorage)
	}
	return true, data, nil
}

func (s *redisStore) Write(ctx context.Context, key string, data []byte) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if err := s.client.Set(qctx, s.prefixKey(key), data, 0).Err(); err != nil {
		return errors.Mark(errors.Wrapf(err, "memoize: write cache entry %s", key), ErrStorage)
	}
	return nil
}

func (s *redisStore) Close() error {
	return nil
}
