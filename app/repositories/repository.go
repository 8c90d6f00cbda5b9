package repositories

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Store owns the Badger database and the repositories built on it.
type Store struct {
	db     *badger.DB
	mutex  sync.Mutex
	dbPath string
	closed bool

	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
	Sessions *BadgerSessionRepository
	Feed     *BadgerFeed
}

// NewStore opens the database at path. An empty path opens an in-memory
// database, which is what tests use.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log.Sugar().Named("badger")}).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return newStore(db, path, log), nil
}

func newStore(db *badger.DB, path string, log *zap.Logger) *Store {
	return &Store{
		db:       db,
		dbPath:   path,
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Sessions: NewBadgerSessionRepository(db),
		Feed:     NewBadgerFeed(db, log),
	}
}

// DB exposes the underlying database for maintenance commands.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path returns the on-disk location, empty for in-memory stores.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping() error {
	s.mutex.Lock()
	closed := s.closed
	s.mutex.Unlock()
	if closed {
		return ErrClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// Badger's info output is chatty; keep it at debug.
func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Debugf(format, args...)
}
