package annotate

import (
	"testing"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

func TestBuildNERKeepsAlignedSpans(t *testing.T) {
	parsed := ParsedNER{
		Text: "Alice works at OpenAI.",
		Spans: []doc.Span{
			{Start: 0, End: 5, Label: "PERSON"},
		},
	}

	d, err := NERBuilder{}.Build(parsed, token.NewTokenizer())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(d.Ents) != 1 || d.Ents[0] != parsed.Spans[0] {
		t.Fatalf("ents: %v", d.Ents)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("built document fails validation: %v", err)
	}
}

func TestBuildNERDropsAlignmentMiss(t *testing.T) {
	// "OpenAI" without the trailing period splits the token "OpenAI." and
	// must be dropped silently; the aligned PERSON span survives.
	parsed := ParsedNER{
		Text: "Alice works at OpenAI.",
		Spans: []doc.Span{
			{Start: 0, End: 5, Label: "PERSON"},
			{Start: 15, End: 21, Label: "ORG"},
		},
	}

	d, err := NERBuilder{}.Build(parsed, token.NewTokenizer())
	if err != nil {
		t.Fatalf("build should not fail on an alignment miss: %v", err)
	}

	if len(d.Ents) != 1 {
		t.Fatalf("expected 1 surviving span, got %v", d.Ents)
	}
	if d.Ents[0].Label != "PERSON" {
		t.Errorf("wrong span survived: %+v", d.Ents[0])
	}
}

func TestBuildNERDropsOverlap(t *testing.T) {
	// Both spans align to token boundaries but overlap on "works"; the
	// first span in parser order wins.
	parsed := ParsedNER{
		Text: "Alice works at OpenAI.",
		Spans: []doc.Span{
			{Start: 0, End: 11, Label: "PERSON"}, // "Alice works"
			{Start: 6, End: 14, Label: "ORG"},    // "works at"
		},
	}

	d, err := NERBuilder{}.Build(parsed, token.NewTokenizer())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(d.Ents) != 1 || d.Ents[0].Label != "PERSON" {
		t.Fatalf("keep-first policy violated: %v", d.Ents)
	}
}

func TestBuildNEREmpty(t *testing.T) {
	d, err := NERBuilder{}.Build(ParsedNER{Text: "no entities here"}, token.NewTokenizer())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(d.Ents) != 0 {
		t.Errorf("expected no ents, got %v", d.Ents)
	}
	if len(d.Tokens) != 3 {
		t.Errorf("expected 3 tokens, got %v", d.Tokens)
	}
}

func TestBuildTextCat(t *testing.T) {
	parsed := ParsedTextCat{
		Text: "A great product.",
		Cats: map[string]float64{"POSITIVE": 1.0},
	}

	d, err := TextCatBuilder{}.Build(parsed, token.NewTokenizer())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if d.Text != parsed.Text {
		t.Errorf("text: %q", d.Text)
	}
	if d.Cats["POSITIVE"] != 1.0 {
		t.Errorf("cats: %v", d.Cats)
	}
	if len(d.Tokens) != 3 {
		t.Errorf("tokens: %v", d.Tokens)
	}

	// The builder must copy, not share, the parsed map.
	parsed.Cats["POSITIVE"] = 0.0
	if d.Cats["POSITIVE"] != 1.0 {
		t.Error("builder shares the parsed category map")
	}
}

func TestBuildRejectsWrongVariant(t *testing.T) {
	if _, err := (NERBuilder{}).Build(ParsedTextCat{}, token.NewTokenizer()); err == nil {
		t.Error("NER builder accepted a textcat parse")
	}
	if _, err := (TextCatBuilder{}).Build(ParsedNER{}, token.NewTokenizer()); err == nil {
		t.Error("textcat builder accepted an NER parse")
	}
}
