// Package storage provides storage backends for run records.
//
// # Storage Backends
//
//   - SQLite: a database file next to the project, kept across runs
//   - Memory: records live as long as the process, for tests and
//     throwaway runs
//
// Open selects the backend from the run store configuration.
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode and a busy timeout set on every pooled connection
//   - A versioned schema created on open
//   - Indexes on start time, status and input file
//   - Rule executions kept as a JSON column
//
// Two drivers are supported. "sqlite3" uses github.com/mattn/go-sqlite3 and
// needs cgo; "sqlite" uses modernc.org/sqlite and builds without it.
//
// # Basic Usage
//
//	store, err := storage.Open(&cfg.RunStore, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	records, err := store.Query(ctx, &runstore.Query{
//	    Status: runstore.StatusFailed,
//	    Limit:  20,
//	})
package storage
