package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// SQLiteStorage implements the Storage interface using SQLite. Either the
// cgo driver (mattn/go-sqlite3, "sqlite3") or the pure Go driver
// (modernc.org/sqlite, "sqlite") can be used.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

var _ runstore.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates the database at cfg.Path, enables WAL
// mode and creates the schema. Missing parent directories are created.
func NewSQLiteStorage(cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "runstore.sqlite")

	if cfg.Driver == "" {
		cfg.Driver = config.DefaultRunStoreSQLiteDriver
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = config.DefaultRunStoreBusyTimeout
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, runstore.NewStorageError("sqlite", "create_dir", err)
		}
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, runstore.NewStorageError("sqlite", "open", err)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, runstore.NewStorageError("sqlite", "open", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// buildDSN sets journal mode and busy timeout on every pooled connection.
// The two drivers spell connection pragmas differently.
func buildDSN(cfg config.SQLiteConfig) (string, error) {
	timeout := cfg.BusyTimeout.Milliseconds()
	params := url.Values{}

	switch cfg.Driver {
	case "sqlite3":
		params.Set("_journal_mode", "WAL")
		params.Set("_busy_timeout", fmt.Sprint(timeout))
	case "sqlite":
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout))
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	return "file:" + cfg.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return runstore.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return runstore.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return runstore.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return runstore.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a run record to the database. Storing a record with an
// existing ID replaces it.
func (s *SQLiteStorage) Store(ctx context.Context, record *runstore.RunRecord) error {
	rulesJSON, err := json.Marshal(record.Rules)
	if err != nil {
		return runstore.NewStorageError("sqlite", "store", err)
	}

	query := `
		INSERT OR REPLACE INTO runs (
			id, input_file, partition_name, model_name,
			status, started_at, finished_at, duration_ns, error,
			rule_count, wave_count, output_file, rules
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.InputFile, record.Partition, record.ModelName,
		string(record.Status), record.StartedAt.UnixNano(), record.FinishedAt.UnixNano(), int64(record.Duration), nullString(record.Error),
		record.RuleCount, record.WaveCount, nullString(record.OutputFile), string(rulesJSON),
	)
	if err != nil {
		return runstore.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves run records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *runstore.Query) ([]*runstore.RunRecord, error) {
	if err := runstore.ValidateQuery(query); err != nil {
		return nil, err
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	// Sort order is validated above.
	sortOrder := "DESC"
	if query.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at %s, id %s", sortOrder, sortOrder)

	limit := runstore.DefaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, runstore.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*runstore.RunRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, runstore.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, runstore.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of run records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *runstore.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, runstore.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes run records matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *runstore.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, runstore.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, runstore.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return runstore.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *runstore.Query) (string, []any) {
	var conditions []string
	var args []any

	// Time range filter
	if query.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}

	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.InputFile != "" {
		conditions = append(conditions, "input_file = ?")
		args = append(args, query.InputFile)
	}
	if query.ModelName != "" {
		conditions = append(conditions, "model_name = ?")
		args = append(args, query.ModelName)
	}
	if len(query.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(query.IDs)), ",")
		conditions = append(conditions, "id IN ("+placeholders+")")
		for _, id := range query.IDs {
			args = append(args, id)
		}
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a RunRecord.
func scanRow(rows *sql.Rows) (*runstore.RunRecord, error) {
	var record runstore.RunRecord
	var status string
	var startedAt, finishedAt, durationNs int64
	var errorVal, outputFile, rulesJSON sql.NullString

	err := rows.Scan(
		&record.ID, &record.InputFile, &record.Partition, &record.ModelName,
		&status, &startedAt, &finishedAt, &durationNs, &errorVal,
		&record.RuleCount, &record.WaveCount, &outputFile, &rulesJSON,
	)
	if err != nil {
		return nil, err
	}

	record.Status = runstore.Status(status)
	record.StartedAt = time.Unix(0, startedAt).UTC()
	record.FinishedAt = time.Unix(0, finishedAt).UTC()
	record.Duration = time.Duration(durationNs)
	record.Error = errorVal.String
	record.OutputFile = outputFile.String

	if rulesJSON.Valid && rulesJSON.String != "" {
		if err := json.Unmarshal([]byte(rulesJSON.String), &record.Rules); err != nil {
			return nil, fmt.Errorf("decode rules of run %s: %w", record.ID, err)
		}
	}

	return &record, nil
}

// nullString converts empty strings to NULL for optional columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
