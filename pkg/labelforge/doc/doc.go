package doc

import (
	"errors"
	"fmt"

	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

// Span is a labeled byte range into a document's text
type Span struct {
	Start int
	End   int
	Label string
}

// Document is one annotated training example: tokenized text plus either
// entity spans (NER) or category scores (text classification).
type Document struct {
	Text   string
	Tokens []token.Token
	Ents   []Span
	Cats   map[string]float64
	Meta   map[string]string
}

// Validate checks the document invariants: spans are well-formed, ordered,
// non-overlapping, and (when tokens are present) aligned to token boundaries;
// category scores lie in [0,1].
func (d *Document) Validate() error {
	prevEnd := 0
	for i, ent := range d.Ents {
		if ent.Label == "" {
			return fmt.Errorf("ent %d: label is required", i)
		}
		if ent.Start < 0 || ent.Start >= ent.End || ent.End > len(d.Text) {
			return fmt.Errorf("ent %d: span (%d,%d) out of bounds for text of length %d",
				i, ent.Start, ent.End, len(d.Text))
		}
		if ent.Start < prevEnd {
			return fmt.Errorf("ent %d: span (%d,%d) overlaps or precedes an earlier span",
				i, ent.Start, ent.End)
		}
		if d.Tokens != nil {
			if _, _, ok := token.Align(d.Tokens, ent.Start, ent.End); !ok {
				return fmt.Errorf("ent %d: span (%d,%d) is not token-aligned", i, ent.Start, ent.End)
			}
		}
		prevEnd = ent.End
	}

	for label, score := range d.Cats {
		if label == "" {
			return errors.New("category label is required")
		}
		if score < 0 || score > 1 {
			return fmt.Errorf("category %q: score %v outside [0,1]", label, score)
		}
	}

	return nil
}
