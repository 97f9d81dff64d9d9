// Package annotate turns raw LLM output into structured training documents.
//
// The flow per sample is parse → build: a task-specific Parser recovers
// clean text plus annotation structure from the model's inline markup, and
// the matching Builder materializes a doc.Document with strict invariants.
// Task selection goes through the registry in registry.go; nothing else
// branches on task names.
package annotate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Parsed is the closed set of parser outputs. Exactly two shapes exist:
// ParsedNER and ParsedTextCat.
type Parsed interface {
	isParsed()
}

// ParsedNER is clean text plus labeled byte-offset spans. Offsets are valid
// only in Text, never in the raw annotated string they were recovered from.
type ParsedNER struct {
	Text  string
	Spans []doc.Span
}

// ParsedTextCat is clean text plus an exclusive category→score mapping.
type ParsedTextCat struct {
	Text string
	Cats map[string]float64
}

func (ParsedNER) isParsed()     {}
func (ParsedTextCat) isParsed() {}

// Parser converts one raw annotated string into task-specific structure.
// Parsers are deterministic and side-effect free.
type Parser interface {
	Parse(raw string) (Parsed, error)
}

// nerMarker matches one inline annotation of the form [ENTITY](LABEL).
var nerMarker = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// NERParser recovers spans from inline [ENTITY](LABEL) markers.
//
// The scan is best-effort by design: anything that does not match the marker
// pattern — unbalanced brackets, stray parentheses — is treated as literal
// text. Partial extraction is still useful training data, so this parser
// never fails; the worst case is the input unchanged with zero spans.
type NERParser struct{}

// Parse strips the markers and records the byte range each entity text
// occupies in the cleaned output. Spans come out in left-to-right order and
// cannot overlap: they derive from non-overlapping regexp matches.
func (NERParser) Parse(raw string) (Parsed, error) {
	var clean strings.Builder
	var spans []doc.Span
	last := 0

	for _, m := range nerMarker.FindAllStringSubmatchIndex(raw, -1) {
		clean.WriteString(raw[last:m[0]])
		start := clean.Len()
		clean.WriteString(raw[m[2]:m[3]]) // entity text, without brackets
		spans = append(spans, doc.Span{Start: start, End: clean.Len(), Label: raw[m[4]:m[5]]})
		last = m[1]
	}
	clean.WriteString(raw[last:])

	return ParsedNER{Text: clean.String(), Spans: spans}, nil
}

// catLabel matches the LABEL: <CATEGORY> line in the tail section.
var catLabel = regexp.MustCompile(`LABEL:\s*(\w+)`)

// TextCatParser parses the classification format:
//
//	Text content
//	---
//	LABEL: CATEGORY
//
// Unlike NER there is no graceful degradation here: the whole annotation is
// carried by one label token, so a malformed sample is unrecoverable and
// parsing fails hard.
type TextCatParser struct{}

// Parse splits on the --- delimiter and extracts the single category.
// The result is an exclusive single-label classification with score 1.0.
func (TextCatParser) Parse(raw string) (Parsed, error) {
	parts := strings.Split(raw, "---")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected exactly one '---' delimiter, found %d",
			internalerr.ErrBadFormat, len(parts)-1)
	}

	m := catLabel.FindStringSubmatch(strings.TrimSpace(parts[1]))
	if m == nil {
		return nil, fmt.Errorf("%w: missing 'LABEL:' line after delimiter", internalerr.ErrBadFormat)
	}

	return ParsedTextCat{
		Text: strings.TrimSpace(parts[0]),
		Cats: map[string]float64{m[1]: 1.0},
	}, nil
}
