package ir

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	rdxerrors "rustdex/internal/errors"
)

// Load reads a documentation graph from disk. Files ending in .zst are
// decompressed transparently. The returned graph carries its source path
// and the blake2b hash of the decompressed bytes, which downstream
// caching uses as the identity of the graph's content.
func Load(path string) (*Graph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, rdxerrors.New(rdxerrors.GraphMissing,
			fmt.Sprintf("graph not found at %s", path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rdxerrors.New(rdxerrors.GraphMissing,
			fmt.Sprintf("failed to read graph at %s", path), err)
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			return nil, rdxerrors.New(rdxerrors.GraphMalformed,
				fmt.Sprintf("failed to decompress graph at %s", path), err)
		}
	}

	g, err := Decode(data)
	if err != nil {
		return nil, rdxerrors.New(rdxerrors.GraphMalformed,
			fmt.Sprintf("failed to decode graph at %s", path), err)
	}

	sum := blake2b.Sum256(data)
	g.Source = path
	g.Hash = hex.EncodeToString(sum[:])
	return g, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
