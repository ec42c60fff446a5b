// Package badgerkv provides a durable BadgerDB-backed storage tier. It plays
// the role of the cross-restart tier: values survive process restarts.
package badgerkv

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/storage"
)

const keyPrefix = "kv:"

var _ storage.Tier = (*Tier)(nil)

type Tier struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) a Badger database at path and wraps it as a tier.
func Open(path string, logger zerolog.Logger) (*Tier, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "[badgerkv.Open] badger.Open")
	}
	return New(db, logger), nil
}

// OpenInMemory opens a non-persistent Badger instance. Used by tests and by
// deployments that have no writable data directory.
func OpenInMemory(logger zerolog.Logger) (*Tier, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "[badgerkv.OpenInMemory] badger.Open")
	}
	return New(db, logger), nil
}

func New(db *badger.DB, logger zerolog.Logger) *Tier {
	return &Tier{db: db, logger: logger}
}

func (t *Tier) Get(key string) (string, bool) {
	var value []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		t.logger.Debug().Err(err).Str("key", key).Msg("badgerkv read failed")
		return "", false
	}
	return string(value), true
}

func (t *Tier) Set(key, value string) {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), []byte(value))
	})
	if err != nil {
		// Best-effort by contract: the caller never sees storage failures.
		t.logger.Debug().Err(err).Str("key", key).Msg("badgerkv write failed")
	}
}

func (t *Tier) Delete(key string) {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		t.logger.Debug().Err(err).Str("key", key).Msg("badgerkv delete failed")
	}
}

// Close releases the underlying database.
func (t *Tier) Close() error {
	return t.db.Close()
}
