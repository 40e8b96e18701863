package parser

import (
	"sort"
	"strings"

	"github.com/dgallion1/svdoc/internal/docrecord"
)

// tag identifies which field of a DocRecord a buffered span belongs to.
type tag int

const (
	tagNone tag = iota
	tagBrief
	tagDetails
	tagNote
	tagParam
	tagInput
	tagOutput
	tagInout
	tagCode
	tagExample
)

type tagMarker struct {
	marker string
	tag    tag
}

// tagMarkers is ordered longest marker first. Markers match by line prefix,
// so a marker that extends a shorter one must be tried first.
var tagMarkers = sortMarkers([]tagMarker{
	{"@brief", tagBrief},
	{"@details", tagDetails},
	{"@note", tagNote},
	{"@param", tagParam},
	{"@input", tagInput},
	{"@output", tagOutput},
	{"@inout", tagInout},
	{"@code", tagCode},
	{"@example", tagExample},
})

var endMarkers = []string{"@endcode", "@endexample"}

func sortMarkers(m []tagMarker) []tagMarker {
	sort.SliceStable(m, func(i, j int) bool {
		return len(m[i].marker) > len(m[j].marker)
	})
	return m
}

// fieldUpdate is the result of flushing one tag span.
type fieldUpdate struct {
	tag  tag
	text string
}

// blockState is the tag-scoped accumulation state of the block parser.
type blockState struct {
	tag tag
	buf []string
}

// flush closes the open span and returns its content. The state is reset to
// no open tag.
func (s *blockState) flush() fieldUpdate {
	u := fieldUpdate{tag: s.tag, text: strings.TrimSpace(strings.Join(s.buf, "\n"))}
	s.tag = tagNone
	s.buf = nil
	return u
}

// feed consumes one decoration-stripped line. When the line closes a span,
// the flushed update is returned with ok set.
func (s *blockState) feed(line string) (u fieldUpdate, ok bool) {
	if t, rest, found := matchTag(line); found {
		u = s.flush()
		s.tag = t
		s.buf = append(s.buf, strings.TrimSpace(rest))
		return u, true
	}
	for _, end := range endMarkers {
		if strings.HasPrefix(line, end) {
			return s.flush(), true
		}
	}
	if s.tag != tagNone {
		s.buf = append(s.buf, line)
	}
	return fieldUpdate{}, false
}

func matchTag(line string) (tag, string, bool) {
	for _, m := range tagMarkers {
		if strings.HasPrefix(line, m.marker) {
			return m.tag, line[len(m.marker):], true
		}
	}
	return tagNone, "", false
}

// apply merges a flushed span into rec.
func (u fieldUpdate) apply(rec *docrecord.DocRecord) {
	switch u.tag {
	case tagBrief:
		rec.Brief = u.text
	case tagDetails:
		rec.Details = u.text
	case tagNote:
		rec.Note = u.text
	case tagParam, tagInput, tagOutput, tagInout:
		if u.text == "" {
			return
		}
		item := splitItem(u.text)
		switch u.tag {
		case tagParam:
			rec.Params = append(rec.Params, item)
		case tagInput:
			rec.Inputs = append(rec.Inputs, item)
		case tagOutput:
			rec.Outputs = append(rec.Outputs, item)
		case tagInout:
			rec.Inouts = append(rec.Inouts, item)
		}
	case tagCode:
		if u.text != "" {
			rec.Code = append(rec.Code, u.text)
		}
	case tagExample:
		if u.text != "" {
			rec.Examples = append(rec.Examples, u.text)
		}
	}
}

// splitItem splits "name rest of text" into its name and description.
func splitItem(text string) docrecord.Item {
	i := strings.IndexAny(text, " \t\n\r")
	if i < 0 {
		return docrecord.Item{Name: text}
	}
	return docrecord.Item{
		Name:        text[:i],
		Description: strings.TrimSpace(text[i:]),
	}
}

// stripDecoration removes the "*" and whitespace decoration around a doc
// comment line, including the stars of a "**/" closer.
func stripDecoration(line string) string {
	return strings.Trim(line, " \t\r*")
}

// ParseBlock turns the body of one documentation comment into a DocRecord.
// It never fails: missing tags leave their fields empty. The caller fills in
// Name and Kind.
func ParseBlock(raw string) docrecord.DocRecord {
	var rec docrecord.DocRecord
	var st blockState

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if u, ok := st.feed(stripDecoration(line)); ok {
			u.apply(&rec)
		}
	}
	st.flush().apply(&rec)

	return rec
}
