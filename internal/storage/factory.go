package storage

import "fmt"

// NewStore picks a backend by name: "memory" (the default) or "sqlite".
// The sqlite backend needs the sqlite build tag; without it the factory
// reports how to get one.
func NewStore(kind, dbPath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
