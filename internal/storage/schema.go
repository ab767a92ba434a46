package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}

		if err := createGraphsTable(tx); err != nil {
			return err
		}
		if err := createRecordsTable(tx); err != nil {
			return err
		}
		if err := createStatsRunsTable(tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Run migrations sequentially
	// Add migration functions here as schema evolves
	// Example:
	// if version < 2 {
	//     if err := db.migrateToV2(); err != nil {
	//         return err
	//     }
	// }

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		// Table doesn't exist, this is a new database
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createGraphsTable creates the graphs table. One row per flattened
// graph file, keyed by content hash so a changed file never serves
// stale records.
func createGraphsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS graphs (
			hash TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			crate_version TEXT,
			format_version INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			flattened_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create graphs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_graphs_source ON graphs(source)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createRecordsTable creates the records table holding the flattened
// rows of each cached graph.
func createRecordsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			graph_hash TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('trait', 'struct', 'enum', 'function', 'impl')),
			item_id TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			decl TEXT NOT NULL,
			has_generics INTEGER NOT NULL,
			is_const INTEGER NOT NULL,
			is_async INTEGER NOT NULL,
			stability TEXT NOT NULL CHECK(stability IN ('stable', 'unstable')),
			fn_count INTEGER NOT NULL,
			trait_path TEXT NOT NULL DEFAULT '',
			trait_foreign INTEGER NOT NULL DEFAULT 0,

			FOREIGN KEY (graph_hash) REFERENCES graphs(hash) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_records_graph_hash ON records(graph_hash)",
		"CREATE INDEX IF NOT EXISTS idx_records_kind_path ON records(kind, path)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createStatsRunsTable creates the stats_runs audit table. Every
// counting run records its tallies and the graphs it covered.
func createStatsRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS stats_runs (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			predicate TEXT NOT NULL,
			matched INTEGER NOT NULL,
			excluded INTEGER NOT NULL,
			stable_total INTEGER NOT NULL,
			graph_hashes TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create stats_runs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_stats_runs_created_at ON stats_runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_stats_runs_profile ON stats_runs(profile)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
