package repositories

import (
	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the database at path, or an in-memory one when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

// NewBadgerStore wires the Badger repositories around db. Closing the store
// closes db.
func NewBadgerStore(db *badger.DB) *Store {
	return NewStore(
		NewBadgerPostRepository(db),
		NewBadgerTagRepository(db),
		NewBadgerCommentRepository(db),
		db.Close,
	)
}
