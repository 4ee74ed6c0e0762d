package memoize

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db     *sql.DB
	dbPath string
	cfg    config
}

var _ Store = (*sqliteStore)(nil)

// NewSQLite returns a Store backed by a SQLite database file. The file must
// already exist — the store is never provisioned here; an absent file is
// reported as ErrStoreNotExist. ":memory:" is accepted for tests.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	s := &sqliteStore{dbPath: dbPath, cfg: applyOptions(opts)}
	if err := s.Exists(ctx); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "memoize: open cache store %s", dbPath), ErrStorage)
	}

	// WAL mode for concurrent read performance.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Mark(errors.Wrap(err, "memoize: enable WAL"), ErrStorage)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS memo (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Mark(errors.Wrap(err, "memoize: create memo table"), ErrStorage)
	}

	s.db = db
	return s, nil
}

func (s *sqliteStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *sqliteStore) Exists(_ context.Context) error {
	if s.dbPath == ":memory:" {
		return nil
	}
	_, err := os.Stat(s.dbPath)
	if os.IsNotExist(err) {
		return errors.Mark(errors.Newf("memoize: cache store %s does not exist, create it to opt in to caching", s.dbPath), ErrStoreNotExist)
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "memoize: stat cache store %s", s.dbPath), ErrStorage)
	}
	return nil
}

func (s *sqliteStore) Read(ctx context.Context, key string) (bool, []byte, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	var data []byte
	err := s.db.QueryRowContext(qctx, `SELECT value FROM memo WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Mark(errors.Wrapf(err, "memoize: read cache entry %s", key), ErrStorage)
	}
	return true, data, nil
}

func (s *sqliteStore) Write(ctx context.Context, key string, data []byte) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	// Keys are content-derived so entries are not overwritten in normal
	// operation; on a racing miss the last writer wins.
	_, err := s.db.ExecContext(qctx,
		`INSERT INTO memo (key, value, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, data, time.Now().UnixNano(),
	)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "memoize: write cache entry %s", key), ErrStorage)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
