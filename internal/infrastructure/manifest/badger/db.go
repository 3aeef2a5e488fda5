package badger

import (
	"errors"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// DB wraps the badgerhold store holding all persisted client-side state:
// the document manifest, the bearer credential, and session preferences.
// Binary document content never lives here.
type DB struct {
	store *badgerhold.Store
}

func Open(path string) (*DB, error) {
	if path == "" {
		path = "./data/manifest"
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open manifest store: %w", err)
	}
	return &DB{store: store}, nil
}

func (db *DB) Store() *badgerhold.Store {
	return db.store
}

// GC reclaims value-log space. Safe to call on shutdown or from a
// maintenance timer; returns once a pass rewrites nothing.
func (db *DB) GC() error {
	for {
		err := db.store.Badger().RunValueLogGC(0.5)
		if errors.Is(err, badgerdb.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (db *DB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}
