package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/cases"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

// ToManifestEntry flattens rec into its manifest entry.
func ToManifestEntry(rec docrecord.DocRecord, sourcePath, docPath string) docrecord.ManifestEntry {
	return docrecord.ManifestEntry{
		Name:       rec.Name,
		SourcePath: sourcePath,
		Brief:      rec.Brief,
		DocPath:    docPath,
	}
}

// Encode serializes entries as an indented JSON array. Non-ASCII text and
// HTML characters are kept as-is.
func Encode(entries []docrecord.ManifestEntry) ([]byte, error) {
	if entries == nil {
		entries = []docrecord.ManifestEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a manifest produced by Encode.
func Decode(data []byte) ([]docrecord.ManifestEntry, error) {
	var entries []docrecord.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return entries, nil
}

// Write stores the manifest at path, creating parent directories.
func Write(path string, entries []docrecord.ManifestEntry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Read loads the manifest at path.
func Read(path string) ([]docrecord.ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Sorted returns a copy of entries ordered case-insensitively by name. Ties
// keep their manifest order.
func Sorted(entries []docrecord.ManifestEntry) []docrecord.ManifestEntry {
	fold := cases.Fold()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = fold.String(e.Name)
	}
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})
	out := make([]docrecord.ManifestEntry, len(entries))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
