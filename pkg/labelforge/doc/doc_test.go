package doc

import (
	"testing"

	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

func validNERDoc() Document {
	text := "Alice works at OpenAI."
	tok := token.NewTokenizer()
	return Document{
		Text:   text,
		Tokens: tok.Tokenize(text),
		Ents: []Span{
			{Start: 0, End: 5, Label: "PERSON"},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	d := validNERDoc()
	if err := d.Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	cat := Document{Text: "A great product.", Cats: map[string]float64{"POSITIVE": 1.0}}
	if err := cat.Validate(); err != nil {
		t.Fatalf("valid textcat document rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Document)
	}{
		{"empty label", func(d *Document) { d.Ents[0].Label = "" }},
		{"inverted span", func(d *Document) { d.Ents[0] = Span{Start: 5, End: 0, Label: "PERSON"} }},
		{"zero-length span", func(d *Document) { d.Ents[0] = Span{Start: 3, End: 3, Label: "PERSON"} }},
		{"span past text end", func(d *Document) { d.Ents[0] = Span{Start: 0, End: 99, Label: "PERSON"} }},
		{"unaligned span", func(d *Document) { d.Ents[0] = Span{Start: 1, End: 5, Label: "PERSON"} }},
		{"overlapping spans", func(d *Document) {
			d.Ents = append(d.Ents, Span{Start: 3, End: 11, Label: "ORG"})
		}},
		{"score above one", func(d *Document) { d.Cats = map[string]float64{"POS": 1.5} }},
		{"negative score", func(d *Document) { d.Cats = map[string]float64{"POS": -0.1} }},
	}

	for _, tc := range cases {
		d := validNERDoc()
		tc.mutate(&d)
		if err := d.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
