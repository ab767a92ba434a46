package storage

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"rustdex/internal/classify"
)

// StatsRun is one recorded counting run.
type StatsRun struct {
	ID          string    `json:"id"`
	Profile     string    `json:"profile"`
	Predicate   string    `json:"predicate"`
	Matched     int       `json:"matched"`
	Excluded    int       `json:"excluded"`
	StableTotal int       `json:"stableTotal"`
	GraphHashes []string  `json:"graphHashes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Result reassembles the run's tallies.
func (r StatsRun) Result() classify.CountResult {
	return classify.CountResult{
		Matched:     r.Matched,
		Excluded:    r.Excluded,
		StableTotal: r.StableTotal,
	}
}

// RunStore records counting runs for later comparison.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new run store
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Record inserts a run, assigning an id and timestamp when the caller
// left them empty. The stored run is returned.
func (s *RunStore) Record(run StatsRun) (StatsRun, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	hashes, err := json.Marshal(run.GraphHashes)
	if err != nil {
		return StatsRun{}, fmt.Errorf("failed to encode graph hashes: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO stats_runs (id, profile, predicate, matched, excluded, stable_total, graph_hashes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Profile,
		run.Predicate,
		run.Matched,
		run.Excluded,
		run.StableTotal,
		string(hashes),
		run.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return StatsRun{}, fmt.Errorf("failed to insert stats run: %w", err)
	}

	return run, nil
}

// RecentRuns lists the latest runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]StatsRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, profile, predicate, matched, excluded, stable_total, graph_hashes, created_at
		FROM stats_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats runs: %w", err)
	}
	defer rows.Close()

	var runs []StatsRun
	for rows.Next() {
		var run StatsRun
		var hashes, createdAt string
		if err := rows.Scan(
			&run.ID,
			&run.Profile,
			&run.Predicate,
			&run.Matched,
			&run.Excluded,
			&run.StableTotal,
			&hashes,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats run: %w", err)
		}
		if err := json.Unmarshal([]byte(hashes), &run.GraphHashes); err != nil {
			return nil, fmt.Errorf("invalid graph_hashes format: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at format: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats runs: %w", err)
	}

	return runs, nil
}
