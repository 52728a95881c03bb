package storage

import (
	"fmt"
	"log/slog"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// Open creates the storage backend selected by cfg.Backend.
func Open(cfg *config.RunStoreConfig, logger *slog.Logger) (runstore.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(cfg.SQLite, logger)
	default:
		return nil, fmt.Errorf("unknown run store backend %q", cfg.Backend)
	}
}
