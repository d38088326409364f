package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"menu-scraper/pkg/log"
	"menu-scraper/pkg/models"
	"menu-scraper/pkg/utils"
)

const (
	placeKeyPrefix = "place:"     // Prefix for Google Maps place URL keys in DB
	resolveDBDir   = "resolve_db" // Subdirectory name within cacheDir for Badger DB files
)

// BadgerStore implements the ResolutionStore interface using BadgerDB.
// The cache is durable across runs; place data goes stale slowly enough
// that entries are never expired, only overwritten.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerStore initializes and returns a new BadgerStore under cacheDir.
func NewBadgerStore(cacheDir string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(cacheDir, resolveDBDir)

	logger.Infof("Initializing place resolution cache at: %s", dbPath)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dbPath, err)
	}

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger). // Use custom logrus adapter
		WithNumVersionsToKeep(1)  // Only the latest resolution matters

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dbPath, err)
	}

	logger.Info("Place resolution cache initialized successfully.")
	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return badger.ErrConflict;
// these resolve in microseconds, so a tight retry loop is sufficient.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := 0; i < maxConflictRetries; i++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// Get implements the ResolutionStore interface
func (s *BadgerStore) Get(gmapsURL string) (*models.PlaceResolution, bool, error) {
	if s.db == nil {
		return nil, false, errors.New("resolution cache not initialized")
	}
	key := []byte(placeKeyPrefix + gmapsURL)

	var entry *models.PlaceResolution
	errView := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil // Cache miss is not an error
		}
		if errGet != nil {
			return fmt.Errorf("%w: failed getting place key '%s': %w", utils.ErrDatabase, string(key), errGet)
		}

		return item.Value(func(val []byte) error {
			var decoded models.PlaceResolution
			if errJson := json.Unmarshal(val, &decoded); errJson != nil {
				// A corrupt entry is treated as a miss so the caller re-resolves
				s.log.Warnf("Failed to unmarshal PlaceResolution for key '%s': %v. Treating as miss.", string(key), errJson)
				return nil
			}
			entry = &decoded
			return nil
		})
	})

	if errView != nil {
		s.log.Errorf("DB View error in Get for key '%s': %v", string(key), errView)
		return nil, false, errView
	}
	return entry, entry != nil, nil
}

// Put implements the ResolutionStore interface
func (s *BadgerStore) Put(gmapsURL string, res models.PlaceResolution) error {
	if s.db == nil {
		return errors.New("resolution cache not initialized")
	}
	key := []byte(placeKeyPrefix + gmapsURL)

	entryBytes, errJson := json.Marshal(res)
	if errJson != nil {
		wrappedErr := fmt.Errorf("%w: failed to marshal PlaceResolution for key '%s': %w", utils.ErrParsing, string(key), errJson)
		s.log.Error(wrappedErr)
		return wrappedErr
	}

	err := s.dbUpdate(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, entryBytes))
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in Put: %v", err)
		return fmt.Errorf("%w: failed setting place resolution for key '%s': %w", utils.ErrDatabase, string(key), err)
	}

	s.log.Debugf("Cached place resolution for key '%s'", string(key))
	return nil
}

// Close cleanly closes the database connection
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.log.Info("Closing place resolution cache...")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing badger database: %w", utils.ErrDatabase, err)
	}
	s.db = nil
	return nil
}
