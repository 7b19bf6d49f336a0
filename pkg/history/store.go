package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"f1weekendsim/pkg/caster"
	"f1weekendsim/pkg/logger"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const DefaultCacheDB = "./f1weekendsim-cache.db"

// Key identifies one cached record.
type Key struct {
	Season int
	Kind   Kind
	ID     string
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%s", k.Season, k.Kind, k.ID)
}

// Store keeps serialized records in a local sqlite file. Records are never
// updated or expired once written.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", path)
	}

	if _, err := db.Exec(buildCreateResultsTable()); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initialising cache %s", path)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

func (s *Store) Get(key Key) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, read := buildSelectEntryCommand(key)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return "", false, err
	}
	return read(rows)
}

func (s *Store) Put(key Key, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args := buildInsertEntryCommand(key, payload, time.Now().UTC().Format(time.RFC3339))
	_, err := s.db.Exec(query, args...)
	return err
}

func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, read := buildCountEntriesCommand()
	rows, err := s.db.Query(query)
	if err != nil {
		return 0, err
	}
	return read(rows)
}

// Cache is a read-through Fetcher: records found in the store are returned
// as they are, anything else is fetched from next and written back.
type Cache struct {
	store  *Store
	next   Fetcher
	codec  caster.Caster[[]RaceEntry]
	logger *log.Logger
}

func NewCache(store *Store, next Fetcher, l *log.Logger) *Cache {
	return &Cache{
		store:  store,
		next:   next,
		codec:  caster.JSONCaster[[]RaceEntry]{},
		logger: logger.OrDiscard(l),
	}
}

func (c *Cache) Results(ctx context.Context, season int, kind Kind, id string) ([]RaceEntry, error) {
	key := Key{Season: season, Kind: kind, ID: id}

	payload, ok, err := c.store.Get(key)
	switch {
	case err != nil:
		c.logger.Warn("cache read failed", "key", key, "err", err)
	case ok:
		entries, err := c.codec.From(payload)
		if err == nil {
			c.logger.Debug("cache hit", "key", key)
			return entries, nil
		}
		c.logger.Warn("ignoring unreadable cache entry", "key", key, "err", err)
	}

	entries, err := c.next.Results(ctx, season, kind, id)
	if err != nil {
		return nil, err
	}

	payload, err = c.codec.To(entries)
	if err != nil {
		c.logger.Warn("cannot encode results", "key", key, "err", err)
		return entries, nil
	}
	if err := c.store.Put(key, payload); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return entries, nil
}
