package storage

import (
	"database/sql"
	"fmt"
	"time"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
	"rustdex/internal/ir"
)

// CachedGraph describes one cached graph row.
type CachedGraph struct {
	Hash          string
	Source        string
	CrateVersion  string
	FormatVersion int
	RecordCount   int
	FlattenedAt   time.Time
}

// RecordStore persists flattened records keyed by graph content hash,
// so an unchanged graph file never gets flattened twice. It implements
// the pipeline's RecordCache.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new record store
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Get returns the cached records of a graph, if any. The cached row
// count is cross-checked against the rows actually read; a mismatch
// surfaces as CACHE_CORRUPT.
func (s *RecordStore) Get(hash string) ([]flatten.Record, bool, error) {
	var count int
	err := s.db.QueryRow("SELECT record_count FROM graphs WHERE hash = ?", hash).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up graph: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT kind, item_id, name, path, decl,
		       has_generics, is_const, is_async,
		       stability, fn_count, trait_path, trait_foreign
		FROM records
		WHERE graph_hash = ?
		ORDER BY rowid
	`, hash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]flatten.Record, 0, count)
	for rows.Next() {
		var r flatten.Record
		var kind, stability string
		if err := rows.Scan(
			&kind,
			&r.ID,
			&r.Name,
			&r.Path,
			&r.Decl,
			&r.HasGenerics,
			&r.IsConst,
			&r.IsAsync,
			&stability,
			&r.FnCount,
			&r.TraitPath,
			&r.TraitForeign,
		); err != nil {
			return nil, false, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Kind = flatten.Kind(kind)
		r.Stability = flatten.Stability(stability)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read records: %w", err)
	}

	if len(records) != count {
		return nil, false, rdxerrors.New(rdxerrors.CacheCorrupt,
			fmt.Sprintf("graph %s has %d cached records, expected %d", hash, len(records), count), nil)
	}

	return records, true, nil
}

// Put stores a graph's flattened records, replacing any previous rows
// for the same hash.
func (s *RecordStore) Put(g *ir.Graph, records []flatten.Record) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		// The cascade clears old records with the graph row.
		if _, err := tx.Exec("DELETE FROM graphs WHERE hash = ?", g.Hash); err != nil {
			return fmt.Errorf("failed to clear old graph: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO graphs (hash, source, crate_version, format_version, record_count, flattened_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			g.Hash,
			g.Source,
			g.CrateVersion,
			g.FormatVersion,
			len(records),
			time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert graph: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO records (
				graph_hash, kind, item_id, name, path, decl,
				has_generics, is_const, is_async,
				stability, fn_count, trait_path, trait_foreign
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare record insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			if _, err := stmt.Exec(
				g.Hash,
				string(r.Kind),
				r.ID,
				r.Name,
				r.Path,
				r.Decl,
				r.HasGenerics,
				r.IsConst,
				r.IsAsync,
				string(r.Stability),
				r.FnCount,
				r.TraitPath,
				r.TraitForeign,
			); err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		return nil
	})
}

// Delete removes a cached graph and its records.
func (s *RecordStore) Delete(hash string) error {
	if _, err := s.db.Exec("DELETE FROM graphs WHERE hash = ?", hash); err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	return nil
}

// Graphs lists every cached graph, newest first.
func (s *RecordStore) Graphs() ([]CachedGraph, error) {
	rows, err := s.db.Query(`
		SELECT hash, source, crate_version, format_version, record_count, flattened_at
		FROM graphs
		ORDER BY flattened_at DESC, hash
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer rows.Close()

	var graphs []CachedGraph
	for rows.Next() {
		var g CachedGraph
		var crateVersion sql.NullString
		var flattenedAt string
		if err := rows.Scan(&g.Hash, &g.Source, &crateVersion, &g.FormatVersion, &g.RecordCount, &flattenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		g.CrateVersion = crateVersion.String
		g.FlattenedAt, err = time.Parse(time.RFC3339, flattenedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid flattened_at format: %w", err)
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read graphs: %w", err)
	}

	return graphs, nil
}
