// Package astcache implements the on-disk AST cache contract named in §6:
// a content-hashed blob at ./.flowlang/ast/<basename>_<8hex>.flowast,
// avoiding a re-parse (the out-of-scope parser's job) when the source is
// unchanged. The AST encoding itself is goccy/go-json over the ast
// package's node types, chosen for the same reason it backs manifest
// decoding and the json stdlib module — one JSON codec, used everywhere
// this module needs one.
package astcache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/BDNK1/flowlang/ast"
)

const hashSize = 32

// PathFor returns the cache path for a given source file, e.g.
// "./.flowlang/ast/main_a1b2c3d4.flowast".
func PathFor(sourcePath string, sourceHash [hashSize]byte) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	base = base[:len(base)-len(ext)]
	return filepath.Join(".flowlang", "ast", fmt.Sprintf("%s_%x.flowast", base, sourceHash[:4]))
}

// Load reads a cache entry and verifies its embedded hash against source.
// A hash mismatch, or any read/decode failure, is reported as a cache miss
// (ok=false) rather than an error — callers fall back to parsing.
func Load(sourcePath string, source []byte) (*ast.Program, bool) {
	hash := sha256.Sum256(source)
	path := PathFor(sourcePath, hash)

	data, err := os.ReadFile(path)
	if err != nil || len(data) < hashSize {
		return nil, false
	}

	var stored [hashSize]byte
	copy(stored[:], data[:hashSize])
	if stored != hash {
		return nil, false
	}

	var prog ast.Program
	if err := gojson.Unmarshal(data[hashSize:], &prog); err != nil {
		return nil, false
	}
	return &prog, true
}

// Store writes a cache entry for source, overwriting any existing one.
func Store(sourcePath string, source []byte, prog *ast.Program) error {
	hash := sha256.Sum256(source)
	path := PathFor(sourcePath, hash)

	encoded, err := gojson.Marshal(prog)
	if err != nil {
		return fmt.Errorf("encoding ast: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	out := make([]byte, 0, hashSize+len(encoded))
	out = append(out, hash[:]...)
	out = append(out, encoded...)
	return os.WriteFile(path, out, 0o644)
}
