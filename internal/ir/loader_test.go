package ir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	rdxerrors "rustdex/internal/errors"
)

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.json")
	if err := os.WriteFile(path, []byte(miniGraph), 0o644); err != nil {
		t.Fatalf("failed to write graph: %v", err)
	}

	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if g.Source != path {
		t.Errorf("source = %q, want %q", g.Source, path)
	}
	if g.Hash == "" {
		t.Error("hash is empty, want content hash")
	}
	if g.Root != "0:0" {
		t.Errorf("root = %q, want 0:0", g.Root)
	}
}

func TestLoadCompressedGraph(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "mini.json")
	if err := os.WriteFile(plain, []byte(miniGraph), 0o644); err != nil {
		t.Fatalf("failed to write graph: %v", err)
	}

	compressed := filepath.Join(dir, "mini.json.zst")
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	data := enc.EncodeAll([]byte(miniGraph), nil)
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	if err := os.WriteFile(compressed, data, 0o644); err != nil {
		t.Fatalf("failed to write compressed graph: %v", err)
	}

	gPlain, err := Load(plain)
	if err != nil {
		t.Fatalf("Load plain failed: %v", err)
	}
	gZst, err := Load(compressed)
	if err != nil {
		t.Fatalf("Load compressed failed: %v", err)
	}

	if len(gZst.Index) != len(gPlain.Index) {
		t.Errorf("compressed index has %d items, plain has %d", len(gZst.Index), len(gPlain.Index))
	}
	// The hash covers the decompressed bytes, so both loads agree.
	if gZst.Hash != gPlain.Hash {
		t.Errorf("hash mismatch: compressed %s, plain %s", gZst.Hash, gPlain.Hash)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		if err == nil {
			t.Fatal("Load succeeded, want error")
		}
		if code := rdxerrors.CodeOf(err); code != rdxerrors.GraphMissing {
			t.Errorf("code = %s, want %s", code, rdxerrors.GraphMissing)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatal("Load succeeded, want error")
		}
		if code := rdxerrors.CodeOf(err); code != rdxerrors.GraphMalformed {
			t.Errorf("code = %s, want %s", code, rdxerrors.GraphMalformed)
		}
	})

	t.Run("bad zstd frame", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json.zst")
		if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatal("Load succeeded, want error")
		}
		if code := rdxerrors.CodeOf(err); code != rdxerrors.GraphMalformed {
			t.Errorf("code = %s, want %s", code, rdxerrors.GraphMalformed)
		}
	})
}
