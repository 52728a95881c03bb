package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the run database schema.
// Times are stored as Unix nanoseconds so that both drivers compare them
// the same way.
const Schema = `
-- Run records table
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    input_file TEXT NOT NULL,
    partition_name TEXT NOT NULL DEFAULT '',
    model_name TEXT NOT NULL,

    -- Outcome
    status TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    error TEXT,

    -- Model shape
    rule_count INTEGER NOT NULL,
    wave_count INTEGER NOT NULL,
    output_file TEXT,

    -- Rule executions as a JSON array
    rules TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_input_file ON runs(input_file);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, input_file, partition_name, model_name,
	status, started_at, finished_at, duration_ns, error,
	rule_count, wave_count, output_file, rules`
