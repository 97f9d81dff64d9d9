package annotate

import (
	"fmt"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

// Builder materializes a parsed annotation into a Document using the
// supplied tokenizer. Builders construct a new Document and touch no
// shared state.
type Builder interface {
	Build(parsed Parsed, tok *token.Tokenizer) (doc.Document, error)
}

// NERBuilder keeps only spans that align exactly to token boundaries.
//
// LLM-produced character offsets frequently split tokens at punctuation, so
// an alignment miss is expected and silently dropped — never reported, never
// fabricated into a wider span. When two aligned spans overlap, the first
// one (in parser order) wins and the later span is dropped the same way.
type NERBuilder struct{}

func (NERBuilder) Build(parsed Parsed, tok *token.Tokenizer) (doc.Document, error) {
	p, ok := parsed.(ParsedNER)
	if !ok {
		return doc.Document{}, fmt.Errorf("%w: NER builder got %T", internalerr.ErrInvalidInput, parsed)
	}

	tokens := tok.Tokenize(p.Text)

	var ents []doc.Span
	prevEnd := 0
	for _, span := range p.Spans {
		if _, _, aligned := token.Align(tokens, span.Start, span.End); !aligned {
			continue
		}
		if span.Start < prevEnd {
			// keep-first overlap policy
			continue
		}
		ents = append(ents, span)
		prevEnd = span.End
	}

	return doc.Document{Text: p.Text, Tokens: tokens, Ents: ents}, nil
}

// TextCatBuilder carries the category mapping over verbatim; categories are
// document-level, so no alignment step exists.
type TextCatBuilder struct{}

func (TextCatBuilder) Build(parsed Parsed, tok *token.Tokenizer) (doc.Document, error) {
	p, ok := parsed.(ParsedTextCat)
	if !ok {
		return doc.Document{}, fmt.Errorf("%w: textcat builder got %T", internalerr.ErrInvalidInput, parsed)
	}

	cats := make(map[string]float64, len(p.Cats))
	for label, score := range p.Cats {
		cats[label] = score
	}

	return doc.Document{Text: p.Text, Tokens: tok.Tokenize(p.Text), Cats: cats}, nil
}
