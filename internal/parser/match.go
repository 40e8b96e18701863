package parser

import (
	"regexp"
	"strings"
	"sync"
)

// Pairing selects how documentation blocks are associated with definitions.
type Pairing string

const (
	// PairNearest gives each definition the closest unconsumed block above it.
	PairNearest Pairing = "nearest"
	// PairPositional gives the k-th definition the k-th block of the file.
	PairPositional Pairing = "positional"
)

// DefaultKeywords are the definition introducers recognized when none are
// configured.
var DefaultKeywords = []string{"module"}

// MatchOptions controls definition matching.
type MatchOptions struct {
	Keywords []string
	Pairing  Pairing
}

// Definition is a named construct in a source file and the raw documentation
// block paired with it. Block is empty when no block was paired.
type Definition struct {
	Keyword string
	Name    string
	Offset  int // Byte offset of the keyword in the source
	Block   string
}

// span is a documentation block found in the source.
type span struct {
	start, end int
	body       string
}

// defPatterns caches compiled definition patterns by keyword set.
var defPatterns sync.Map

func definitionPattern(keywords []string) *regexp.Regexp {
	key := strings.Join(keywords, "|")
	if re, ok := defPatterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\s+(?:(?:automatic|static)\s+)?([A-Za-z_][A-Za-z0-9_$]*)`)
	defPatterns.Store(key, re)
	return re
}

// MatchDefinitions finds the definitions of src in order of appearance and
// pairs each with a documentation block. A source with no definitions yields
// nil even when it contains blocks.
func MatchDefinitions(src string, opts MatchOptions) []Definition {
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	masked, blocks := scanComments(src)

	re := definitionPattern(keywords)
	var defs []Definition
	for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
		defs = append(defs, Definition{
			Keyword: masked[m[2]:m[3]],
			Name:    masked[m[4]:m[5]],
			Offset:  m[0],
		})
	}
	if len(defs) == 0 {
		return nil
	}

	if opts.Pairing == PairPositional {
		pairPositional(defs, blocks)
	} else {
		pairNearest(defs, blocks)
	}
	return defs
}

func pairPositional(defs []Definition, blocks []span) {
	for i := range defs {
		if i < len(blocks) {
			defs[i].Block = strings.TrimSpace(blocks[i].body)
		}
	}
}

// pairNearest walks blocks and definitions in one forward pass. The latest
// block seen is pending until a definition consumes it. Blocks holding only
// decoration (banner comments) never displace a pending block.
func pairNearest(defs []Definition, blocks []span) {
	b := 0
	for i := range defs {
		pending := -1
		for b < len(blocks) && blocks[b].end <= defs[i].Offset {
			if stripDecoration(strings.ReplaceAll(blocks[b].body, "\n", "")) != "" {
				pending = b
			}
			b++
		}
		if pending >= 0 {
			defs[i].Block = strings.TrimSpace(blocks[pending].body)
		}
	}
}

// scanComments returns src with every comment and string literal blanked out
// (offsets preserved) together with the "/** ... */" blocks it contains.
func scanComments(src string) (string, []span) {
	out := []byte(src)
	var blocks []span

	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			blank(i, i+end)
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			var stop int
			if end >= 0 {
				stop = i + 2 + end + 2
			} else if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
				// Unterminated: mask the rest of the line only.
				stop = i + nl
			} else {
				stop = len(src)
			}
			if end >= 0 && strings.HasPrefix(src[i:], "/**") && !strings.HasPrefix(src[i:], "/**/") {
				blocks = append(blocks, span{start: i, end: stop, body: src[i+3 : stop-2]})
			}
			blank(i, stop)
			i = stop
		case src[i] == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) {
				j++
			}
			if j > len(src) {
				j = len(src)
			}
			blank(i, j)
			i = j
		default:
			i++
		}
	}
	return string(out), blocks
}
