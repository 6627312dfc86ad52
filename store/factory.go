package store

import "fmt"

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"memory" - ordered slice in process memory (default)
//	"sqlite" - private in-memory SQLite database
//
// Neither backend survives a restart.
func New(backend string) (Store, error) {
	switch backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSqliteStore()
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: memory, sqlite)", backend)
	}
}
