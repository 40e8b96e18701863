package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

// Parser converts raw source bytes into the documentation records of every
// definition it contains, in file order.
type Parser interface {
	Parse(r io.Reader, filename string) ([]docrecord.DocRecord, error)
}

// DefaultExtensions are the source file extensions handled when none are
// configured.
var DefaultExtensions = []string{".sv", ".svh", ".v", ".vh"}

// ForFile returns the appropriate parser for a filename. exts lists the
// accepted extensions; DefaultExtensions applies when it is empty.
func ForFile(filename string, exts []string, opts MatchOptions) (Parser, error) {
	if !IsSupportedExtension(filename, exts) {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
	return &SourceParser{Options: opts}, nil
}

// IsSupportedExtension reports whether filename has one of exts, compared
// case-insensitively. DefaultExtensions applies when exts is empty.
func IsSupportedExtension(filename string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// SourceParser handles Verilog and SystemVerilog sources.
type SourceParser struct {
	Options MatchOptions
}

func (p *SourceParser) Parse(r io.Reader, filename string) ([]docrecord.DocRecord, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return ParseSource(string(src), p.Options), nil
}

// ParseSource matches the definitions of src and parses the block paired with
// each one.
func ParseSource(src string, opts MatchOptions) []docrecord.DocRecord {
	defs := MatchDefinitions(src, opts)
	if len(defs) == 0 {
		return nil
	}
	records := make([]docrecord.DocRecord, 0, len(defs))
	for _, d := range defs {
		rec := ParseBlock(d.Block)
		rec.Name = d.Name
		rec.Kind = d.Keyword
		records = append(records, rec)
	}
	return records
}
