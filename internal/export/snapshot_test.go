package export

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
)

func snapshotRecords() []flatten.Record {
	return []flatten.Record{
		{Kind: flatten.KindFunction, ID: "0:2", Name: "swap", Path: "core::mem", Decl: "const fn swap();", IsConst: true, Stability: flatten.Stable},
		{Kind: flatten.KindImpl, ID: "0:9", Name: "Display", Path: "std::net", Decl: "impl Display for IpAddr { }", Stability: flatten.Stable, TraitPath: "core::fmt::Display", TraitForeign: true},
		{Kind: flatten.KindTrait, ID: "0:4", Name: "Iterator", Path: "core::iter", Decl: "trait Iterator { }", HasGenerics: true, Stability: flatten.Unstable, FnCount: 75},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.snapshot")
	records := snapshotRecords()
	sources := []string{"assets/core.json", "assets/std.json"}

	if err := WriteSnapshot(path, records, sources, "1.2.3"); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.Tool != "rustdex" || snap.Version != "1.2.3" {
		t.Errorf("tool = %q version = %q", snap.Tool, snap.Version)
	}
	if !reflect.DeepEqual(snap.Sources, sources) {
		t.Errorf("sources = %v, want %v", snap.Sources, sources)
	}
	if int(snap.RecordCount) != len(records) {
		t.Errorf("recordCount = %d, want %d", snap.RecordCount, len(records))
	}
	if !reflect.DeepEqual(snap.Records, records) {
		t.Errorf("records do not survive the round trip:\ngot  %+v\nwant %+v", snap.Records, records)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}

func TestSnapshotOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.snapshot")

	if err := WriteSnapshot(path, snapshotRecords(), nil, "1.0.0"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteSnapshot(path, snapshotRecords()[:1], nil, "2.0.0"); err != nil {
		t.Fatalf("second write: %v", err)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != "2.0.0" || len(snap.Records) != 1 {
		t.Errorf("second write not visible: version %q, %d records", snap.Version, len(snap.Records))
	}
}

func TestSnapshotEmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.snapshot")

	if err := WriteSnapshot(path, nil, nil, "1.0.0"); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.RecordCount != 0 || len(snap.Records) != 0 {
		t.Errorf("empty snapshot came back with %d records", len(snap.Records))
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snapshot"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if rdxerrors.CodeOf(err) == rdxerrors.SnapshotIncompatible {
		t.Error("missing file should be an I/O error, not an incompatibility")
	}
}

func TestReadSnapshotNotZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.snapshot")
	if err := os.WriteFile(path, []byte("not a snapshot at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadSnapshot(path)
	if rdxerrors.CodeOf(err) != rdxerrors.SnapshotIncompatible {
		t.Errorf("got %v, want SNAPSHOT_INCOMPATIBLE", err)
	}
}

func TestReadSnapshotSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.snapshot")
	writeRawSnapshot(t, path, Snapshot{
		Schema:      99,
		Tool:        "rustdex",
		RecordCount: 0,
	})

	_, err := ReadSnapshot(path)
	if rdxerrors.CodeOf(err) != rdxerrors.SnapshotIncompatible {
		t.Errorf("got %v, want SNAPSHOT_INCOMPATIBLE", err)
	}
}

func TestReadSnapshotCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.snapshot")
	writeRawSnapshot(t, path, Snapshot{
		Schema:      snapshotSchemaVersion,
		Tool:        "rustdex",
		RecordCount: 5,
		Records:     snapshotRecords(),
	})

	_, err := ReadSnapshot(path)
	if rdxerrors.CodeOf(err) != rdxerrors.SnapshotIncompatible {
		t.Errorf("got %v, want SNAPSHOT_INCOMPATIBLE", err)
	}
}

// writeRawSnapshot encodes a snapshot without going through WriteSnapshot,
// so tests can plant payloads WriteSnapshot would refuse to produce.
func writeRawSnapshot(t *testing.T, path string, snap Snapshot) {
	t.Helper()
	payload, err := msgpack.Marshal(&snap)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll(payload, nil)
	enc.Close()
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		t.Fatal(err)
	}
}
