package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"rustdex/internal/output"
	"rustdex/internal/testutil"
)

// TestRunGolden flattens the checked-in fixture graph and pins the full
// record set, encoded the same deterministic way the CLI emits it.
func TestRunGolden(t *testing.T) {
	path := filepath.Join("testdata", "minicore.json")

	res, err := Run(context.Background(), []string{path}, nil, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := output.DeterministicEncodeIndented(res.Records, "  ")
	if err != nil {
		t.Fatalf("encode records: %v", err)
	}
	got = append(got, '\n')

	testutil.CompareGolden(t, filepath.Join("testdata", "minicore.golden.json"), got)
}

// TestRunGoldenStable re-runs the fixture and checks both runs encode to
// identical bytes, independent of goroutine scheduling.
func TestRunGoldenStable(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "minicore.json"),
		filepath.Join("testdata", "minicore.json"),
	}

	encode := func() []byte {
		t.Helper()
		res, err := Run(context.Background(), paths, nil, Options{Jobs: 2}, quietLogger())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		got, err := output.DeterministicEncodeIndented(res.Records, "  ")
		if err != nil {
			t.Fatalf("encode records: %v", err)
		}
		return got
	}

	first := encode()
	for i := 0; i < 3; i++ {
		if next := string(encode()); next != string(first) {
			t.Fatalf("run %d produced different bytes:\n%s\nvs\n%s", i+1, next, first)
		}
	}
}
