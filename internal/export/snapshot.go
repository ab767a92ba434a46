package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
)

// Current schema version - increment when Snapshot format changes
const snapshotSchemaVersion uint16 = 1

// Snapshot is a self-contained, compressed record set: everything a
// later stats run needs without the original graph files.
type Snapshot struct {
	// Schema version for safe invalidation when the format changes
	Schema uint16 `msgpack:"schema"`

	Tool      string    `msgpack:"tool"`
	Version   string    `msgpack:"version"`
	CreatedAt time.Time `msgpack:"createdAt"`

	// Sources lists the graph files the records came from.
	Sources []string `msgpack:"sources"`

	RecordCount uint32           `msgpack:"recordCount"`
	Records     []flatten.Record `msgpack:"records"`
}

// WriteSnapshot encodes records as msgpack, compresses them with zstd,
// and atomically replaces path.
func WriteSnapshot(path string, records []flatten.Record, sources []string, toolVersion string) error {
	count, err := safecast.Conv[uint32](len(records))
	if err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			"record set too large for snapshot", err)
	}

	snap := Snapshot{
		Schema:      snapshotSchemaVersion,
		Tool:        "rustdex",
		Version:     toolVersion,
		CreatedAt:   time.Now().UTC(),
		Sources:     sources,
		RecordCount: count,
		Records:     records,
	}

	packed, err := msgpack.Marshal(&snap)
	if err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			"cannot encode snapshot", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			"cannot initialize compressor", err)
	}
	compressed := enc.EncodeAll(packed, nil)
	enc.Close()

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			fmt.Sprintf("cannot create snapshot in %s", dir), err)
	}
	tmp := f.Name()

	if _, err := f.Write(compressed); err != nil {
		f.Close()
		os.Remove(tmp)
		return rdxerrors.New(rdxerrors.ExportFailed,
			"cannot write snapshot", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return rdxerrors.New(rdxerrors.ExportFailed,
			"cannot write snapshot", err)
	}

	// Atomic replace
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return rdxerrors.New(rdxerrors.ExportFailed,
			fmt.Sprintf("cannot move snapshot to %s", path), err)
	}
	return nil
}

// ReadSnapshot loads and validates a snapshot. Undecodable data and
// schema mismatches surface as SNAPSHOT_INCOMPATIBLE; plain I/O
// failures wrap normally.
func ReadSnapshot(path string) (*Snapshot, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing decompressor: %w", err)
	}
	defer dec.Close()

	packed, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, rdxerrors.New(rdxerrors.SnapshotIncompatible,
			fmt.Sprintf("snapshot %s is not zstd data", path), err)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(packed, &snap); err != nil {
		return nil, rdxerrors.New(rdxerrors.SnapshotIncompatible,
			fmt.Sprintf("snapshot %s cannot be decoded", path), err)
	}

	if snap.Schema != snapshotSchemaVersion {
		return nil, rdxerrors.New(rdxerrors.SnapshotIncompatible,
			fmt.Sprintf("snapshot %s has schema %d, this build reads %d",
				path, snap.Schema, snapshotSchemaVersion), nil)
	}
	if int(snap.RecordCount) != len(snap.Records) {
		return nil, rdxerrors.New(rdxerrors.SnapshotIncompatible,
			fmt.Sprintf("snapshot %s declares %d records but holds %d",
				path, snap.RecordCount, len(snap.Records)), nil)
	}

	return &snap, nil
}
