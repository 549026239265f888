package cache

import (
	"context"
	"fmt"

	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Backend settings for Open.
type OpenOptions struct {
	Backend         string // memory, sqlite or pathstore
	SQLitePath      string
	PathstoreURL    string
	PathstoreAPIKey string
}

// Open constructs the store named by opts.Backend.
func Open(opts OpenOptions) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "pathstore":
		return NewPathstoreStore(pathstore.NewClient(opts.PathstoreURL, opts.PathstoreAPIKey)), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Sweep removes expired entries from stores that keep them until swept.
// Pathstore expires entries server side, so it is a no-op there.
func Sweep(ctx context.Context, s Store) (int64, error) {
	switch st := s.(type) {
	case *MemoryStore:
		return int64(st.Cleanup()), nil
	case *SQLiteStore:
		return st.Cleanup(ctx)
	default:
		return 0, nil
	}
}
